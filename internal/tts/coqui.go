package tts

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// DefaultPreset is used for unknown voice presets.
const DefaultPreset = "female"

// Voice presets of the coqui backend, all single speaker LJSpeech models.
var coquiPresets = map[string]string{
	"female": DefaultModel,
	"male":   "tts_models/en/ljspeech/speedy-speech",
	"glow":   "tts_models/en/ljspeech/glow-tts",
}

// CoquiPresets returns the names of the voice presets.
func CoquiPresets() []string {
	return slices.Sorted(maps.Keys(coquiPresets))
}

// ResolvePreset sets the model of a coqui request that has none. The voice
// then names a preset and is cleared.
func ResolvePreset(req Request) Request {
	if req.Model != "" {
		return req
	}
	model, ok := coquiPresets[req.Voice]
	if !ok {
		if req.Voice != "" {
			slog.Warn("unknown voice preset, using "+DefaultPreset, "voice", req.Voice)
		}
		model = coquiPresets[DefaultPreset]
	}
	req.Model = model
	req.Voice = ""
	return req
}

// coqui runs the command line interface of Coqui TTS. The model is loaded
// by name and downloaded by tts itself on first use.
type coqui struct {
	execEngine
}

func (c *coqui) Backend() Backend {
	return Coqui
}

func (c *coqui) Synthesize(ctx context.Context, req Request, dst string) error {
	var args []string
	if req.Model != "" {
		args = append(args, "--model_name", req.Model)
	}
	args = append(args, "--text", req.Text, "--out_path", dst)
	if req.Voice != "" {
		args = append(args, "--speaker_idx", req.Voice)
	}
	if req.Language != "" {
		args = append(args, "--language_idx", req.Language)
	}
	return c.run(ctx, nil, "tts", args...)
}
