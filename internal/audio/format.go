package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

type Format int

const (
	Wav Format = iota
	Mp3
	M4a
	Unknown
)

func (f Format) String() string {
	switch f {
	case Wav:
		return "wav"
	case Mp3:
		return "mp3"
	case M4a:
		return "m4a"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// FormatFromPath infers the format from the file extension. Anything
// unknown is wav.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for i := range Unknown {
		if strings.EqualFold(i.String(), ext) {
			return i
		}
	}
	return Wav
}

func ParseFormat(s string) (Format, error) {
	for i := range Unknown {
		if strings.EqualFold(i.String(), s) {
			return i, nil
		}
	}
	return Unknown, fmt.Errorf("unknown audio format '%s'", s)
}

func (f *Format) UnmarshalYAML(node *yaml.Node) error {
	var y string
	err := node.Decode(&y)
	if err != nil {
		return err
	}
	parsed, err := ParseFormat(y)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}
