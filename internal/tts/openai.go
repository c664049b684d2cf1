package tts

import (
	"context"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// openAI uses the speech endpoint of OpenAI or of a compatible server
// like LocalAI.
type openAI struct {
	client *openai.Client
}

func newOpenAI(endpoint, apiKey string, client *http.Client) *openAI {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = strings.TrimSuffix(endpoint, "/")
	}
	cfg.HTTPClient = client
	return &openAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *openAI) Backend() Backend {
	return OpenAI
}

func (o *openAI) Synthesize(ctx context.Context, req Request, dst string) error {
	model := openai.SpeechModel(req.Model)
	// Coqui model names mean nothing to the API.
	if model == "" || strings.HasPrefix(req.Model, "tts_models/") {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(req.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	res, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          req.Speed,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Close()
	}()
	return writeFile(dst, res)
}
