package tts

import "context"

type say struct {
	execEngine
}

func (s *say) Backend() Backend {
	return Say
}

func (s *say) Synthesize(ctx context.Context, req Request, dst string) error {
	// `--data-format=LEF32@22050` is needed for wav.
	// https://stackoverflow.com/questions/9729153/error-on-say-when-output-format-is-wave
	// The comments state that a sample rate higher than 22050 is not recommended.
	args := []string{"--data-format", "LEF32@22050"}
	if req.Voice != "" {
		args = append(args, "--voice", req.Voice)
	}
	args = append(args, "--output-file", dst, req.Text)
	return s.run(ctx, nil, "say", args...)
}
