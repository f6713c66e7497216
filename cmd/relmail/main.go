package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/flarebyte/relmail/cmd/relmail/root"
)

// exitCodeUsage is used for errors that carry no exit code of their own,
// such as unknown flags.
const exitCodeUsage = 64

type exitCoder interface {
	ExitCode() int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		// Print a short, single-line error to stderr on failures.
		// Do not print usage or stack traces.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString(msg + "\n")
		code := exitCodeUsage
		if ec, ok := err.(exitCoder); ok {
			if c := ec.ExitCode(); c != 0 {
				code = c
			}
		}
		os.Exit(code)
	}
}
