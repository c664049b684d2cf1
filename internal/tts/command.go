package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/mattn/go-shellwords"
)

// CommandValues can be used in the command line of a command backend.
type CommandValues struct {
	Text     string
	Output   string
	Model    string
	Voice    string
	Language string
}

// command runs a user defined command line like
//
//	mimic3 --voice {{ .Voice }} --output {{ .Output }} {{ .Text }}
//
// Values are shell quoted before the line is split into arguments, so a
// text with spaces stays one argument. Placeholders must not be quoted.
type command struct {
	execEngine
	tmpl *template.Template
}

func newCommand(e execEngine, line string) (*command, error) {
	if !strings.Contains(line, ".Output") {
		return nil, fmt.Errorf("command '%s' does not contain {{ .Output }}", line)
	}
	t, err := template.New("").Option("missingkey=error").Parse(line)
	if err != nil {
		return nil, err
	}
	c := &command{execEngine: e, tmpl: t}

	// Dry run so unknown fields and broken quoting fail early.
	if _, _, err := c.render(CommandValues{}); err != nil {
		return nil, fmt.Errorf("invalid command '%s': %w", line, err)
	}
	return c, nil
}

func (c *command) Backend() Backend {
	return Command
}

func (c *command) Synthesize(ctx context.Context, req Request, dst string) error {
	name, args, err := c.render(CommandValues{
		Text:     req.Text,
		Output:   dst,
		Model:    req.Model,
		Voice:    req.Voice,
		Language: req.Language,
	})
	if err != nil {
		return err
	}
	return c.run(ctx, nil, name, args...)
}

func (c *command) render(values CommandValues) (string, []string, error) {
	b := &bytes.Buffer{}
	err := c.tmpl.Execute(b, CommandValues{
		Text:     shellQuote(values.Text),
		Output:   shellQuote(values.Output),
		Model:    shellQuote(values.Model),
		Voice:    shellQuote(values.Voice),
		Language: shellQuote(values.Language),
	})
	if err != nil {
		return "", nil, err
	}
	words, err := parseCommand(b.String())
	if err != nil {
		return "", nil, err
	}
	return words[0], words[1:], nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func parseCommand(line string) ([]string, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse command '%s': %w", line, err)
	}
	if len(words) == 0 {
		return nil, errors.New("command is empty")
	}
	return words, nil
}
