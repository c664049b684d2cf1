// Package tts drives external text-to-speech engines. Every engine writes
// a WAV file; none of them is implemented here.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultModel is the Coqui LJSpeech Tacotron2 model with its DDC vocoder.
const DefaultModel = "tts_models/en/ljspeech/tacotron2-DDC"

var (
	ErrUnknownBackend = errors.New("unknown tts backend")
	ErrEmptyText      = errors.New("empty text")
)

type Request struct {
	Model    string
	Voice    string
	Language string
	Text     string
	// Speed is a multiplier, 0 leaves the engine default.
	Speed float64
}

type Synthesizer interface {
	Backend() Backend
	// Synthesize writes the speech of req as WAV file to dst.
	Synthesize(ctx context.Context, req Request, dst string) error
}

type Options struct {
	Backend  Backend
	Endpoint string
	APIKey   string
	// Command is the command line for the command and exec-json backends.
	Command    string
	SampleRate int
	Channels   int

	ExecCmdCtx ExecCmdCtx
	HTTPClient *http.Client
}

// CacheKey covers the options that change the audio of a request.
// The API key and the clients do not.
func (o Options) CacheKey() string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%d", o.Endpoint, o.Command, o.SampleRate, o.Channels)
}

func New(opts Options) (Synthesizer, error) {
	if opts.ExecCmdCtx == nil {
		opts.ExecCmdCtx = ExecCommand
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	e := execEngine{execCmdCtx: opts.ExecCmdCtx}

	var s Synthesizer
	switch opts.Backend {
	case Coqui:
		s = &coqui{e}
	case CoquiServer:
		s = newCoquiServer(opts.Endpoint, opts.HTTPClient)
	case OpenAI:
		s = newOpenAI(opts.Endpoint, opts.APIKey, opts.HTTPClient)
	case Piper:
		s = &piper{e}
	case EspeakNG:
		s = &espeakNG{e}
	case Say:
		if runtime.GOOS != "darwin" {
			return nil, errors.New("backend say is only available on macOS")
		}
		s = &say{e}
	case Command:
		c, err := newCommand(e, opts.Command)
		if err != nil {
			return nil, err
		}
		s = c
	case ExecJSON:
		c, err := newExecJSON(e, opts.Command, opts.SampleRate, opts.Channels)
		if err != nil {
			return nil, err
		}
		s = c
	default:
		return nil, fmt.Errorf("%w %v", ErrUnknownBackend, opts.Backend)
	}
	return &checked{s}, nil
}

// checked rejects requests no engine can serve.
type checked struct {
	Synthesizer
}

func (c *checked) Synthesize(ctx context.Context, req Request, dst string) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if req.Speed < 0 {
		return fmt.Errorf("negative speed %v", req.Speed)
	}
	return c.Synthesizer.Synthesize(ctx, req, dst)
}

type execEngine struct {
	execCmdCtx ExecCmdCtx
}

func (e execEngine) run(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	slog.Debug("execute", "cmd", strings.Join(append([]string{name}, args...), " "))
	out, err := e.execCmdCtx(ctx, stdin, name, args...).CombinedOutput()
	if err != nil {
		return cmdError(name, args, out, err)
	}
	return nil
}

func cmdError(cmd string, args []string, out []byte, err error) error {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return fmt.Errorf("err: %s %s\n%s: %w",
		cmd,
		strings.Join(args, " "),
		firstLine,
		err,
	)
}

// writeFile copies r to path. A partially written file is removed.
func writeFile(path string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	_, err = io.Copy(f, r)
	return err
}
