package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"litesql/cmd/litesql/command"
)

func main() {
	args := os.Args[1:]

	commands := map[string]cli.CommandFactory{
		"open": func() (cli.Command, error) {
			return &command.OpenCommand{}, nil
		},
	}

	litesqlCLI := &cli.CLI{
		Args:     args,
		Commands: commands,
		HelpFunc: cli.BasicHelpFunc("litesql"),
	}

	exitCode, err := litesqlCLI.Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}

	os.Exit(exitCode)
}
