// Command cfo trades a paper portfolio from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/cmd"
	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	// shell completion, a no-op unless invoked by the shell.
	cat, _ := catalog.Default()
	cmd.Completion(flag.CommandLine, cmd.Commands(), cat).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
