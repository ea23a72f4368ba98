package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "simplify":
		return NewSimplifyCommand().Run(ctx, args)
	case "version":
		return NewVersionCommand().Run(ctx, args)
	default:
		return fmt.Errorf(`xform %s: unknown command`, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Xform simplifies decompiler expressions: it folds constants, propagates
register definitions and resolves accesses to known struct instances.

Usage:

	xform <command> [arguments]

The commands are:

	simplify    simplify, substitute and resolve an expression
	version     print the module and Go version
	help        this screen

Use "xform <command> -h" for the arguments of a command.
`[1:])
}

// VersionCommand represents a command for printing the build version.
type VersionCommand struct {
	Stdout io.Writer

	// Returns the build information of the binary. Defaults to
	// debug.ReadBuildInfo.
	ReadBuildInfo func() (*debug.BuildInfo, bool)
}

// NewVersionCommand returns a new instance of VersionCommand.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{
		Stdout:        os.Stdout,
		ReadBuildInfo: debug.ReadBuildInfo,
	}
}

// Run executes the "version" subcommand.
func (cmd *VersionCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("xform-version", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() != 0 {
		return fmt.Errorf("too many arguments")
	}

	info, ok := cmd.ReadBuildInfo()
	if !ok {
		_, err := fmt.Fprintln(cmd.Stdout, "xform (unknown version)")
		return err
	}

	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	_, err := fmt.Fprintf(cmd.Stdout, "xform %s %s\n", version, info.GoVersion)
	return err
}
