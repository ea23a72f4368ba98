package main

import (
	"bytes"
	"context"
	"flag"
	"runtime/debug"
	"testing"
)

func TestRun(t *testing.T) {
	t.Run("ErrHelp", func(t *testing.T) {
		if err := run(context.Background(), []string{"help"}); err != flag.ErrHelp {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrUnknownCommand", func(t *testing.T) {
		if err := run(context.Background(), []string{"foo"}); err == nil || err.Error() != "xform foo: unknown command" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestVersionCommand_Run(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewVersionCommand()
		cmd.Stdout = &buf
		cmd.ReadBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{GoVersion: "go1.21.0", Main: debug.Module{Version: "v0.1.0"}}, true
		}
		if err := cmd.Run(context.Background(), nil); err != nil {
			t.Fatal(err)
		} else if got := buf.String(); got != "xform v0.1.0 go1.21.0\n" {
			t.Fatalf("unexpected output: %q", got)
		}
	})

	t.Run("Devel", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewVersionCommand()
		cmd.Stdout = &buf
		cmd.ReadBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{GoVersion: "go1.21.0"}, true
		}
		if err := cmd.Run(context.Background(), nil); err != nil {
			t.Fatal(err)
		} else if got := buf.String(); got != "xform (devel) go1.21.0\n" {
			t.Fatalf("unexpected output: %q", got)
		}
	})

	t.Run("NoBuildInfo", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewVersionCommand()
		cmd.Stdout = &buf
		cmd.ReadBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
		if err := cmd.Run(context.Background(), nil); err != nil {
			t.Fatal(err)
		} else if got := buf.String(); got != "xform (unknown version)\n" {
			t.Fatalf("unexpected output: %q", got)
		}
	})

	t.Run("ErrTooManyArguments", func(t *testing.T) {
		if err := NewVersionCommand().Run(context.Background(), []string{"x"}); err == nil || err.Error() != "too many arguments" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
