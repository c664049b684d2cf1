package tts

import (
	"context"
	"io"
	"os/exec"
)

// ExecCmdCtx builds an external command. stdin may be nil.
type ExecCmdCtx = func(ctx context.Context, stdin io.Reader, name string, args ...string) Cmd

type Cmd interface {
	CombinedOutput() ([]byte, error)
	Output() ([]byte, error)
}

// ExecCommand is the ExecCmdCtx backed by os/exec.
func ExecCommand(ctx context.Context, stdin io.Reader, name string, args ...string) Cmd {
	c := exec.CommandContext(ctx, name, args...)
	c.Stdin = stdin
	return c
}
