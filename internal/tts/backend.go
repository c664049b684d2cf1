package tts

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

type Backend int

const (
	Coqui Backend = iota
	CoquiServer
	OpenAI
	Piper
	EspeakNG
	Say
	Command
	ExecJSON
	unknownBackend
)

var backendNames = [...]string{
	Coqui:       "coqui",
	CoquiServer: "coqui-server",
	OpenAI:      "openai",
	Piper:       "piper",
	EspeakNG:    "espeak-ng",
	Say:         "say",
	Command:     "command",
	ExecJSON:    "exec-json",
}

var backendRequires = [...]string{
	Coqui:       "tts (pip install coqui-tts)",
	CoquiServer: "running tts-server, see --endpoint",
	OpenAI:      "OpenAI compatible API, e.g. LocalAI, see --endpoint and --api-key",
	Piper:       "piper",
	EspeakNG:    "espeak-ng",
	Say:         "say (macOS)",
	Command:     "any program, see --command",
	ExecJSON:    "program speaking JSON lines on stdin/stdout, see --command",
}

// Backends returns all known backends in declaration order.
func Backends() []Backend {
	bs := make([]Backend, 0, int(unknownBackend))
	for b := range unknownBackend {
		bs = append(bs, b)
	}
	return bs
}

func ParseBackend(s string) (Backend, error) {
	for b := range unknownBackend {
		if strings.EqualFold(backendNames[b], s) {
			return b, nil
		}
	}
	return unknownBackend, fmt.Errorf("%w '%s'", ErrUnknownBackend, s)
}

func (b Backend) String() string {
	if b < 0 || b >= unknownBackend {
		return fmt.Sprintf("Backend(%d)", int(b))
	}
	return backendNames[b]
}

// Requires describes what has to be installed or running for the backend.
func (b Backend) Requires() string {
	if b < 0 || b >= unknownBackend {
		return ""
	}
	return backendRequires[b]
}

func (b *Backend) UnmarshalYAML(node *yaml.Node) error {
	var y string
	err := node.Decode(&y)
	if err != nil {
		return err
	}
	parsed, err := ParseBackend(y)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Set implements pflag.Value.
func (b *Backend) Set(s string) error {
	parsed, err := ParseBackend(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Type implements pflag.Value.
func (b *Backend) Type() string {
	return "backend"
}
