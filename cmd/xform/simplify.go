package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/benbjohnson/xform"
	"github.com/benbjohnson/xform/progdb"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SimplifyCommand represents a command for simplifying an expression.
type SimplifyCommand struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewSimplifyCommand returns a new instance of SimplifyCommand.
func NewSimplifyCommand() *SimplifyCommand {
	return &SimplifyCommand{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the "simplify" subcommand.
func (cmd *SimplifyCommand) Run(ctx context.Context, args []string) (err error) {
	// Malformed input trees, such as a bitfield() call with the wrong
	// number of arguments, are reported instead of crashing the tool.
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*xform.InvariantError)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()

	var defs defsFlag
	fs := flag.NewFlagSet("xform-simplify", flag.ContinueOnError)
	bits := fs.Uint("bits", xform.Width32, "")
	dbPath := fs.String("db", "", "")
	fs.Var(&defs, "def", "")
	dot := fs.Bool("dot", false, "")
	dump := fs.Bool("dump", false, "")
	verbose := fs.Bool("v", false, "verbose")
	fs.SetOutput(cmd.Stderr)
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("expression required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many expressions specified")
	} else if *dot && *dump {
		return fmt.Errorf("cannot specify both -dot and -dump")
	} else if err := xform.ValidateBitness(*bits); err != nil {
		return err
	}

	logger := log.New(cmd.Stderr, "", 0)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	e, err := ParseExpr(fs.Arg(0))
	if err != nil {
		return err
	}

	// Definitions are parsed up front so syntax errors are reported before
	// any output is written.
	m := make(map[xform.Register]xform.Expr, len(defs))
	for _, def := range defs {
		name, expr, err := parseDef(def)
		if err != nil {
			return err
		}
		m[xform.Register{Name: name}] = expr
	}

	var resolver *xform.StructResolver
	if *dbPath != "" {
		db, err := progdb.Open(*dbPath)
		if err != nil {
			return err
		}
		resolver = xform.NewStructResolver(db)
	}

	s := xform.NewSimplifier(*bits)
	e = s.Simplify(e)
	logger.Printf("[simplify] %s", e)

	if len(m) > 0 {
		regs := maps.Keys(m)
		slices.SortFunc(regs, func(a, b xform.Register) bool { return a.Name < b.Name })
		for _, r := range regs {
			logger.Printf("[def] %s = %s", r, m[r])
		}

		sub := xform.NewSubstituter(s)
		sub.Logger = logger
		if other, ok := sub.Substitute(e, m); ok {
			e = other
		}
		logger.Printf("[substitute] %s", e)
	}

	if resolver != nil {
		e = resolver.Resolve(e)
		logger.Printf("[resolve] %s", e)
	}

	switch {
	case *dot:
		return WriteDot(cmd.Stdout, e)
	case *dump:
		spew.Fdump(cmd.Stdout, e)
		return nil
	default:
		_, err := fmt.Fprintln(cmd.Stdout, e)
		return err
	}
}

// parseDef parses a "name=expr" register definition.
func parseDef(s string) (name string, expr xform.Expr, err error) {
	name, text, ok := strings.Cut(s, "=")
	if name = strings.TrimSpace(name); !ok || name == "" {
		return "", nil, fmt.Errorf("invalid definition %q: expected name=expr", s)
	}
	if expr, err = ParseExpr(text); err != nil {
		return "", nil, fmt.Errorf("definition %s: %w", name, err)
	}
	return name, expr, nil
}

func (cmd *SimplifyCommand) usage() {
	fmt.Fprintln(cmd.Stderr, `
usage: xform simplify [arguments] expr

Expressions use Go syntax. Identifiers are registers, *x is a u32 load and
*(*u8)(x) a typed one, u8(x) and i16(x) are casts, cond(x) is a condition
and any other call such as bitfield(x, 0, 8) is a special function.

Arguments:

	-bits n
	    Architecture bit width. Defaults to 32.

	-db path
	    YAML program database used to resolve struct fields.

	-def name=expr
	    Substitute expr for register name. May be repeated.

	-dot
	    Write the result as a Graphviz digraph.

	-dump
	    Write the result as a Go value dump.

	-v
	    Enable verbose logging.
`[1:])
}

// defsFlag collects repeated -def flags.
type defsFlag []string

func (f *defsFlag) String() string { return strings.Join(*f, ",") }

func (f *defsFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}
