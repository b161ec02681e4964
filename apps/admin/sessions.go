package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/unipress/portal/core/session"
)

func (cli *commandLine) purge() error {
	purger, ok := cli.store.(session.Purger)
	if !ok {
		return errors.New("the configured session store expires records natively; nothing to purge")
	}
	n, err := purger.PurgeExpired(context.Background())
	if err != nil {
		return errors.Wrap(err, "purging expired session records")
	}
	fmt.Printf("%d expired session record(s) purged\n", n)
	return nil
}

func (cli *commandLine) revoke(sid string) error {
	if err := cli.store.Delete(context.Background(), sid); err != nil {
		return errors.Wrap(err, "revoking session")
	}
	fmt.Printf("session %q revoked\n", sid)
	return nil
}
