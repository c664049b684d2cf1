package tts

import (
	"context"
	"strconv"
)

type espeakNG struct {
	execEngine
}

func (e *espeakNG) Backend() Backend {
	return EspeakNG
}

func (e *espeakNG) Synthesize(ctx context.Context, req Request, dst string) error {
	var args []string
	switch {
	case req.Voice != "":
		args = append(args, "-v", req.Voice)
	case req.Model != "":
		args = append(args, "-v", req.Model)
	case req.Language != "":
		args = append(args, "-v", req.Language)
	}
	if req.Speed > 0 {
		// 175 words per minute is the espeak-ng default.
		args = append(args, "-s", strconv.Itoa(int(175*req.Speed)))
	}
	args = append(args, "-w", dst, req.Text)
	return e.run(ctx, nil, "espeak-ng", args...)
}
