package tts

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/mrclmr/ttsgen/internal/wav"
	"go.yaml.in/yaml/v3"
)

type recorder struct {
	lines []string
	args  [][]string
	stdin []string
	out   []byte
	err   error
}

func (r *recorder) execCmdCtx(_ context.Context, stdin io.Reader, name string, args ...string) Cmd {
	r.lines = append(r.lines, strings.Join(append([]string{name}, args...), " "))
	r.args = append(r.args, args)
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		r.stdin = append(r.stdin, string(b))
	}
	return &dummyCmd{out: r.out, err: r.err}
}

type dummyCmd struct {
	out []byte
	err error
}

func (c *dummyCmd) CombinedOutput() ([]byte, error) {
	return c.out, c.err
}

func (c *dummyCmd) Output() ([]byte, error) {
	return c.out, c.err
}

func TestSynthesize_Commands(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		req       Request
		wantLine  string
		wantStdin string
	}{
		{
			name:     "coqui default model",
			opts:     Options{Backend: Coqui},
			req:      Request{Model: DefaultModel, Text: "Hello world!"},
			wantLine: "tts --model_name tts_models/en/ljspeech/tacotron2-DDC --text Hello world! --out_path out.wav",
		},
		{
			name:     "coqui multi speaker",
			opts:     Options{Backend: Coqui},
			req:      Request{Model: "tts_models/multilingual/multi-dataset/your_tts", Voice: "female-en-5", Language: "en", Text: "Hi"},
			wantLine: "tts --model_name tts_models/multilingual/multi-dataset/your_tts --text Hi --out_path out.wav --speaker_idx female-en-5 --language_idx en",
		},
		{
			name:     "coqui without model",
			opts:     Options{Backend: Coqui},
			req:      Request{Text: "Hi"},
			wantLine: "tts --text Hi --out_path out.wav",
		},
		{
			name:      "piper",
			opts:      Options{Backend: Piper},
			req:       Request{Model: "en_US-amy-medium.onnx", Text: "Hello\nworld!", Speed: 2},
			wantLine:  "piper --model en_US-amy-medium.onnx --output_file out.wav --length_scale 0.500",
			wantStdin: "Hello world!",
		},
		{
			name:     "espeak-ng voice",
			opts:     Options{Backend: EspeakNG},
			req:      Request{Voice: "en-GB", Text: "Hello world!", Speed: 1},
			wantLine: "espeak-ng -v en-GB -s 175 -w out.wav Hello world!",
		},
		{
			name:     "espeak-ng model",
			opts:     Options{Backend: EspeakNG},
			req:      Request{Model: "mb-en1", Language: "en", Text: "Hi"},
			wantLine: "espeak-ng -v mb-en1 -w out.wav Hi",
		},
		{
			name:     "espeak-ng voice over model",
			opts:     Options{Backend: EspeakNG},
			req:      Request{Model: "mb-en1", Voice: "en-GB", Text: "Hi"},
			wantLine: "espeak-ng -v en-GB -w out.wav Hi",
		},
		{
			name:     "espeak-ng language",
			opts:     Options{Backend: EspeakNG},
			req:      Request{Language: "de", Text: "Hallo"},
			wantLine: "espeak-ng -v de -w out.wav Hallo",
		},
		{
			name:     "command",
			opts:     Options{Backend: Command, Command: `mimic3 --voice {{ .Voice }} --output {{ .Output }} {{ .Text }}`},
			req:      Request{Voice: "en_UK/apope_low", Text: "Hello world!"},
			wantLine: "mimic3 --voice en_UK/apope_low --output out.wav Hello world!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			tt.opts.ExecCmdCtx = rec.execCmdCtx
			s, err := New(tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if s.Backend() != tt.opts.Backend {
				t.Fatalf("Backend() = %v, want %v", s.Backend(), tt.opts.Backend)
			}
			err = s.Synthesize(t.Context(), tt.req, "out.wav")
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if len(rec.lines) != 1 {
				t.Fatalf("executed %d commands, want 1", len(rec.lines))
			}
			if rec.lines[0] != tt.wantLine {
				t.Fatalf("\ngot\n%s\nwant\n%s", rec.lines[0], tt.wantLine)
			}
			if tt.wantStdin != "" && (len(rec.stdin) != 1 || rec.stdin[0] != tt.wantStdin) {
				t.Fatalf("stdin = %q, want %q", rec.stdin, tt.wantStdin)
			}
		})
	}
}

func TestSynthesize_CommandKeepsTextOneArg(t *testing.T) {
	rec := &recorder{}
	s, err := New(Options{
		Backend:    Command,
		Command:    "my-tts -o {{ .Output }} {{ .Text }}",
		ExecCmdCtx: rec.execCmdCtx,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = s.Synthesize(t.Context(), Request{Text: "it's one \"two\" $three"}, "a b.wav")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	want := []string{"-o", "a b.wav", `it's one "two" $three`}
	if strings.Join(rec.args[0], "|") != strings.Join(want, "|") {
		t.Fatalf("args = %q, want %q", rec.args[0], want)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	rec := &recorder{}
	s, err := New(Options{Backend: Coqui, ExecCmdCtx: rec.execCmdCtx})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = s.Synthesize(t.Context(), Request{Text: " \n"}, "out.wav")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("Synthesize() error = %v, want %v", err, ErrEmptyText)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("executed %v, want nothing", rec.lines)
	}
}

func TestSynthesize_CommandFails(t *testing.T) {
	errExit := errors.New("exit status 1")
	rec := &recorder{
		out: []byte("No such model: tts_models/xx\nTraceback ..."),
		err: errExit,
	}
	s, err := New(Options{Backend: Coqui, ExecCmdCtx: rec.execCmdCtx})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = s.Synthesize(t.Context(), Request{Model: "tts_models/xx", Text: "Hi"}, "out.wav")
	if !errors.Is(err, errExit) {
		t.Fatalf("Synthesize() error = %v, want %v", err, errExit)
	}
	if !strings.Contains(err.Error(), "err: tts --model_name tts_models/xx") {
		t.Fatalf("error %q does not name the command", err)
	}
	if !strings.Contains(err.Error(), "No such model: tts_models/xx") {
		t.Fatalf("error %q does not contain the output", err)
	}
	if strings.Contains(err.Error(), "Traceback") {
		t.Fatalf("error %q contains more than the first line", err)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown backend", Options{Backend: unknownBackend}},
		{"command without output", Options{Backend: Command, Command: "my-tts {{ .Text }}"}},
		{"command unknown value", Options{Backend: Command, Command: "my-tts {{ .Output }} {{ .Unknown }}"}},
		{"command empty", Options{Backend: Command}},
		{"command unbalanced quote", Options{Backend: Command, Command: "my-tts \"{{ .Output }}"}},
		{"exec-json empty", Options{Backend: ExecJSON}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if err == nil {
				t.Fatal("New() expected error")
			}
		})
	}
}

func TestNew_Say(t *testing.T) {
	_, err := New(Options{Backend: Say})
	if runtime.GOOS == "darwin" && err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if runtime.GOOS != "darwin" && err == nil {
		t.Fatal("New() expected error outside of macOS")
	}
}

func TestSynthesize_ExecJSON(t *testing.T) {
	// Two chunks of 4 samples, the line after the final chunk is ignored.
	rec := &recorder{
		out: []byte(`{"pcm_base64":"AAABAAIAAwA=","final":false}

{"pcm_base64":"BAAFAAYABwA=","final":true}
{"pcm_base64":"not base64","final":false}
`),
	}
	s, err := New(Options{
		Backend:    ExecJSON,
		Command:    `python3 synth.py --device "cuda:0"`,
		SampleRate: 16000,
		ExecCmdCtx: rec.execCmdCtx,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	dst := filepath.Join(t.TempDir(), "nested", "out.wav")
	err = s.Synthesize(t.Context(), Request{Voice: "amy", Text: "Hello world!"}, dst)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if rec.lines[0] != "python3 synth.py --device cuda:0" {
		t.Fatalf("executed %q", rec.lines[0])
	}
	wantStdin := `{"text":"Hello world!","voice":"amy","model":"","sample_rate":16000,"channels":1}`
	if rec.stdin[0] != wantStdin {
		t.Fatalf("\ngot stdin\n%s\nwant\n%s", rec.stdin[0], wantStdin)
	}
	info, err := wav.Inspect(dst)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.SampleRate != 16000 || info.Channels != 1 || info.BitDepth != 16 {
		t.Fatalf("unexpected wav %+v", info)
	}
}

func TestSynthesize_ExecJSONNoAudio(t *testing.T) {
	rec := &recorder{out: []byte(`{"pcm_base64":"","final":true}`)}
	s, err := New(Options{Backend: ExecJSON, Command: "synth", ExecCmdCtx: rec.execCmdCtx})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	dst := filepath.Join(t.TempDir(), "out.wav")
	err = s.Synthesize(t.Context(), Request{Text: "Hi"}, dst)
	if err == nil {
		t.Fatal("Synthesize() expected error")
	}
	if _, statErr := os.Stat(dst); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("%s should not exist: %v", dst, statErr)
	}
}

type testStruct struct {
	Backend Backend `yaml:"backend"`
}

func TestBackend_Unmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"backend: coqui", Coqui, false},
		{"backend: Coqui-Server", CoquiServer, false},
		{"backend: openai", OpenAI, false},
		{"backend: exec-json", ExecJSON, false},
		{"backend: festival", unknownBackend, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var ts testStruct
			err := yaml.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownBackend) {
					t.Fatalf("Unmarshal error = %v, want %v", err, ErrUnknownBackend)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal error = %v", err)
			}
			if ts.Backend != tt.want {
				t.Fatalf("want %v, Backend %v", tt.want, ts.Backend)
			}
		})
	}
}

func TestBackends(t *testing.T) {
	for _, b := range Backends() {
		if b.Requires() == "" {
			t.Fatalf("%v has no requirement description", b)
		}
		parsed, err := ParseBackend(b.String())
		if err != nil || parsed != b {
			t.Fatalf("ParseBackend(%q) = %v, %v", b.String(), parsed, err)
		}
	}
}

func TestResolvePreset(t *testing.T) {
	tests := []struct {
		req  Request
		want Request
	}{
		{Request{Text: "Hi"}, Request{Model: DefaultModel, Text: "Hi"}},
		{Request{Voice: "female", Text: "Hi"}, Request{Model: DefaultModel, Text: "Hi"}},
		{Request{Voice: "male", Text: "Hi"}, Request{Model: "tts_models/en/ljspeech/speedy-speech", Text: "Hi"}},
		{Request{Voice: "glow", Text: "Hi"}, Request{Model: "tts_models/en/ljspeech/glow-tts", Text: "Hi"}},
		{Request{Voice: "robot", Text: "Hi"}, Request{Model: DefaultModel, Text: "Hi"}},
		{
			Request{Model: "tts_models/en/vctk/vits", Voice: "p225", Text: "Hi"},
			Request{Model: "tts_models/en/vctk/vits", Voice: "p225", Text: "Hi"},
		},
	}
	for _, tt := range tests {
		t.Run("voice "+tt.req.Voice, func(t *testing.T) {
			if got := ResolvePreset(tt.req); got != tt.want {
				t.Fatalf("ResolvePreset() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCoquiPresets(t *testing.T) {
	want := []string{"female", "glow", "male"}
	if got := CoquiPresets(); !slices.Equal(got, want) {
		t.Fatalf("CoquiPresets() = %v, want %v", got, want)
	}
}
