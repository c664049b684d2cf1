package cmd

import (
	"context"
	"log/slog"

	"github.com/mrclmr/ttsgen/internal/audio"
	"github.com/mrclmr/ttsgen/internal/tts"
)

type runOptions struct {
	text       string
	backend    tts.Backend
	model      string
	voice      string
	language   string
	output     string
	format     audio.Format
	speed      float64
	endpoint   string
	command    string
	sampleRate int
	channels   int
}

func run(ctx context.Context, g *globalFlags, opts *runOptions, execCmdCtx tts.ExecCmdCtx) error {
	ttsOpts := tts.Options{
		Backend:    opts.backend,
		Endpoint:   opts.endpoint,
		APIKey:     g.resolvedAPIKey(),
		Command:    opts.command,
		SampleRate: opts.sampleRate,
		Channels:   opts.channels,
		ExecCmdCtx: execCmdCtx,
	}
	synth, err := tts.New(ttsOpts)
	if err != nil {
		return err
	}

	cacheDir, cleanup, err := g.cache()
	if err != nil {
		return err
	}
	defer cleanup()

	creator, err := audio.NewFileCreator(synth, execCmdCtx, cacheDir,
		audio.WithCacheKey(ttsOpts.CacheKey()))
	if err != nil {
		return err
	}

	req := tts.Request{
		Model:    opts.model,
		Voice:    opts.voice,
		Language: opts.language,
		Text:     opts.text,
		Speed:    opts.speed,
	}
	if opts.backend == tts.Coqui {
		req = tts.ResolvePreset(req)
	}
	res, err := creator.Create(ctx, audio.Job{
		Request: req,
		Output:  opts.output,
		Format:  opts.format,
	})
	if err != nil {
		return err
	}
	slog.Debug(res.Operation.String(), "path", res.Path, "duration", res.Duration, "cached", res.Cached)
	slog.Info("Audio generated successfully:", "path", res.Path)
	return nil
}
