package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/unipress/portal/core/session"
	"github.com/unipress/portal/upstream"
)

// probe logs into the upstream API and reports what a fresh session would
// look like, without persisting anything.
func (cli *commandLine) probe(uname, pwd string) error {
	res, err := cli.upstream.Login(context.Background(), upstream.Credentials{
		Username: uname,
		Password: pwd,
	})
	if err != nil {
		return errors.Wrap(err, "authenticating against upstream")
	}

	exp, err := session.CredentialExpiry(res.Token)
	if err != nil {
		return err
	}

	fmt.Printf("authenticated as %q (role %s)\n", res.User.Username, res.User.RoleID)
	fmt.Printf("credential expires at %s\n", exp)
	return nil
}
