package main

import (
	"fmt"

	"github.com/opel-edu/dashboard/core/user"
	"github.com/opel-edu/dashboard/storage/database/fixtures"
)

func (cli *commandLine) hashPassword(pwd string) error {
	var usr user.User
	if err := usr.SetPassword(pwd, cli.conf.BcryptCost); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(usr.PasswordHash))
	return nil
}

// checkSeed reads and validates the fixture at path; an empty path checks the embedded seed.
func (cli *commandLine) checkSeed(path string) error {
	fx, err := fixtures.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "seed ok: %d users, %d students\n", len(fx.Users), len(fx.Students))
	return nil
}
