package tts

import (
	"context"
	"strconv"
	"strings"
)

type piper struct {
	execEngine
}

func (p *piper) Backend() Backend {
	return Piper
}

// Synthesize passes the text on stdin, piper reads one utterance per line.
func (p *piper) Synthesize(ctx context.Context, req Request, dst string) error {
	args := []string{"--model", req.Model, "--output_file", dst}
	if req.Voice != "" {
		args = append(args, "--speaker", req.Voice)
	}
	if req.Speed > 0 {
		// Piper stretches phonemes, so faster speech is a smaller scale.
		args = append(args, "--length_scale", strconv.FormatFloat(1/req.Speed, 'f', 3, 64))
	}
	text := strings.ReplaceAll(req.Text, "\n", " ")
	return p.run(ctx, strings.NewReader(text), "piper", args...)
}
