package tts

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mrclmr/ttsgen/internal/wav"
)

const (
	defaultSampleRate = 22050
	defaultChannels   = 1
)

type execJSONRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	Model      string `json:"model"`
	Language   string `json:"language,omitempty"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type execJSONChunk struct {
	PCMBase64 string `json:"pcm_base64"`
	Final     bool   `json:"final"`
}

// execJSON runs a program that reads one JSON request on stdin and answers
// with JSON lines carrying base64 encoded 16 bit little endian PCM.
type execJSON struct {
	execEngine
	cmd        []string
	sampleRate int
	channels   int
}

func newExecJSON(e execEngine, line string, sampleRate, channels int) (*execJSON, error) {
	words, err := parseCommand(line)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if channels <= 0 {
		channels = defaultChannels
	}
	return &execJSON{
		execEngine: e,
		cmd:        words,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

func (e *execJSON) Backend() Backend {
	return ExecJSON
}

func (e *execJSON) Synthesize(ctx context.Context, req Request, dst string) error {
	data, err := json.Marshal(execJSONRequest{
		Text:       req.Text,
		Voice:      req.Voice,
		Model:      req.Model,
		Language:   req.Language,
		SampleRate: e.sampleRate,
		Channels:   e.channels,
	})
	if err != nil {
		return err
	}

	name, args := e.cmd[0], e.cmd[1:]
	slog.Debug("execute", "cmd", strings.Join(e.cmd, " "))
	out, err := e.execCmdCtx(ctx, bytes.NewReader(data), name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return cmdError(name, args, exitErr.Stderr, err)
		}
		return cmdError(name, args, out, err)
	}

	pcm, err := decodeChunks(out)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	err = wav.Encode(f, pcm, e.sampleRate, e.channels)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
	}
	return err
}

// decodeChunks concatenates the PCM of all lines up to the final chunk.
func decodeChunks(out []byte) ([]byte, error) {
	var pcm []byte
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk execJSONChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("decode chunk: %w", err)
		}
		b, err := base64.StdEncoding.DecodeString(chunk.PCMBase64)
		if err != nil {
			return nil, fmt.Errorf("decode pcm: %w", err)
		}
		pcm = append(pcm, b...)
		if chunk.Final {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errors.New("no audio received")
	}
	return pcm, nil
}
