package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/unipress/portal/core/session"
	"github.com/unipress/portal/upstream"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	store    session.Store
	upstream *upstream.Client
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  purge                    - delete all expired session records")
	fmt.Println("  revoke -sid SID          - delete one session record, forcing that session out")
	fmt.Println("  probe -username USERNAME - log into the upstream API and print the credential expiry")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	revokeSID := revokeCmd.String("sid", "", "The browser session id to revoke.")

	probeCmd := flag.NewFlagSet("probe", flag.ExitOnError)
	probeUname := probeCmd.String("username", "", "The account to probe with. The password will be prompted next.")

	switch args[1] {
	case "purge":
		return cli.purge()
	case "revoke":
		if err := revokeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *revokeSID == "" {
			revokeCmd.Usage()
			return errHelp
		}
		return cli.revoke(*revokeSID)
	case "probe":
		if err := probeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *probeUname == "" {
			probeCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			probeCmd.Usage()
			return errHelp
		}
		return cli.probe(*probeUname, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
