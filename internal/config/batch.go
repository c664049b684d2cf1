package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/mrclmr/ttsgen/internal/audio"
	"github.com/mrclmr/ttsgen/internal/tts"
)

const (
	defaultOutputDir   = "output-ttsgen"
	defaultConcurrency = 2
)

type Batch struct {
	LogLevel    slog.Level   `yaml:"log_level"`
	Backend     tts.Backend  `yaml:"backend"`
	Model       string       `yaml:"model"`
	Voice       string       `yaml:"voice"`
	Language    string       `yaml:"language"`
	Speed       float64      `yaml:"speed"`
	Endpoint    string       `yaml:"endpoint"`
	Command     string       `yaml:"command"`
	SampleRate  int          `yaml:"sample_rate"`
	Channels    int          `yaml:"channels"`
	Format      audio.Format `yaml:"format"`
	OutputDir   string       `yaml:"output_dir"`
	Concurrency int          `yaml:"concurrency"`
	Playlist    bool         `yaml:"playlist"`
	Clean       bool         `yaml:"clean"`
	Items       []Item       `yaml:"items"`
}

type batch Batch

func (b *Batch) UnmarshalYAML(node *yaml.Node) error {
	var y batch
	if err := checkKnownFields(node, y, ""); err != nil {
		return err
	}
	err := node.Decode(&y)
	if err != nil {
		return err
	}
	if len(y.Items) == 0 {
		return keyEmptyError("items")
	}
	if (y.Backend == tts.Command || y.Backend == tts.ExecJSON) && y.Command == "" {
		return keyEmptyError("command")
	}
	if y.Speed < 0 {
		return fmt.Errorf("speed %v is negative", y.Speed)
	}
	if y.Concurrency < 0 {
		return fmt.Errorf("concurrency %d is negative", y.Concurrency)
	}
	if y.OutputDir == "" {
		y.OutputDir = defaultOutputDir
	}
	if y.Concurrency == 0 {
		y.Concurrency = defaultConcurrency
	}

	names := make(map[string]int, len(y.Items))
	for i := range y.Items {
		it := &y.Items[i]
		if it.Name == "" {
			it.Name = fmt.Sprintf("%02d-%s", i+1, sanitizeFilename(truncate(it.Text, 32)))
		}
		if prev, ok := names[it.Name]; ok {
			return fmt.Errorf("items %d and %d have the same name '%s'", prev+1, i+1, it.Name)
		}
		names[it.Name] = i
	}

	*b = Batch(y)
	return nil
}

// Request merges the item into the batch defaults.
func (b *Batch) Request(it Item) tts.Request {
	req := tts.Request{
		Model:    b.Model,
		Voice:    b.Voice,
		Language: b.Language,
		Text:     it.Text,
		Speed:    b.Speed,
	}
	if it.Model != "" {
		req.Model = it.Model
	}
	if it.Voice != "" {
		req.Voice = it.Voice
	}
	if it.Language != "" {
		req.Language = it.Language
	}
	if b.Backend == tts.Coqui {
		req = tts.ResolvePreset(req)
	}
	return req
}

// Output returns the path of the audio file of an item.
func (b *Batch) Output(it Item) string {
	return filepath.Join(b.OutputDir, it.Name+b.Format.Ext())
}

// PlaylistPath returns where the playlist is written.
func (b *Batch) PlaylistPath() string {
	return filepath.Join(b.OutputDir, "playlist.m3u")
}
