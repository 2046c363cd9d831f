package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/opel-edu/dashboard/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a password, prompted next")
	fmt.Fprintln(cli.out, "  checkseed [-file PATH] - validate a seed fixture file (default: the embedded one)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	checkSeedCmd := flag.NewFlagSet("checkseed", flag.ContinueOnError)
	checkSeedCmd.SetOutput(cli.out)
	checkSeedFile := checkSeedCmd.String("file", cli.conf.SeedFile, "Path of the YAML seed file.")

	switch args[1] {
	case "hashpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	case "checkseed":
		if err := checkSeedCmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		return cli.checkSeed(*checkSeedFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
