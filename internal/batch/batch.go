// Package batch synthesizes all items of a batch file. Items run in
// parallel, items with the same request are synthesized once.
package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/mrclmr/ttsgen/internal/audio"
	"github.com/mrclmr/ttsgen/internal/config"
	"github.com/mrclmr/ttsgen/internal/dag"
	"github.com/mrclmr/ttsgen/internal/m3u"
	"github.com/mrclmr/ttsgen/internal/tts"
)

type Runner struct {
	creator  *audio.FileCreator
	cfg      *config.Batch
	progress io.Writer
}

// NewRunner returns a Runner. A non nil progress writer shows a progress bar.
func NewRunner(creator *audio.FileCreator, cfg *config.Batch, progress io.Writer) *Runner {
	return &Runner{creator: creator, cfg: cfg, progress: progress}
}

// Graph returns the work of Run in Graphviz dot format without running it.
func (r *Runner) Graph() (string, error) {
	d, err := r.build()
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func (r *Runner) build() (*dag.Dag[audio.Result], error) {
	d := dag.New[audio.Result](dag.WithConcurrency[audio.Result](r.cfg.Concurrency))
	for _, it := range r.cfg.Items {
		err := d.AddChain(
			&convertNode{
				creator: r.creator,
				output:  r.cfg.Output(it),
				format:  r.cfg.Format,
			},
			&synthNode{
				creator: r.creator,
				req:     r.cfg.Request(it),
			},
		)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Run returns the results in item order.
func (r *Runner) Run(ctx context.Context) ([]audio.Result, error) {
	d, err := r.build()
	if err != nil {
		return nil, err
	}

	bar := r.newBar()
	results := make([]audio.Result, 0, len(r.cfg.Items))
	for res, err := range d.RunRootNodes(ctx) {
		if err != nil {
			return nil, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		label := res.Operation.String()
		if res.Cached {
			label += " (cached)"
		}
		slog.Info(label+"\t", "path", res.Path)
		results = append(results, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	keep := make([]string, 0, len(results)+1)
	for _, res := range results {
		keep = append(keep, res.Path)
	}

	if r.cfg.Playlist {
		path := r.cfg.PlaylistPath()
		if err := writePlaylist(path, r.cfg.OutputDir, results); err != nil {
			return nil, err
		}
		keep = append(keep, path)
		slog.Info("playlist\t", "path", path)
	}

	if r.cfg.Clean {
		if err := audio.RemoveOtherFiles(r.cfg.OutputDir, keep); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *Runner) newBar() *progressbar.ProgressBar {
	if r.progress == nil {
		return nil
	}
	return progressbar.NewOptions(len(r.cfg.Items),
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription("synthesizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func writePlaylist(path, baseDir string, results []audio.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}
	p := m3u.NewRelativePlaylist(f, absBase)
	for _, res := range results {
		abs, err := filepath.Abs(res.Path)
		if err != nil {
			return err
		}
		p.Add(abs, res.Duration)
	}
	return p.Write()
}

type synthNode struct {
	creator *audio.FileCreator
	req     tts.Request
}

func (n *synthNode) Hash() string {
	return hashOf("synth", n.req)
}

func (n *synthNode) Name() string {
	return "synthesize '" + truncate(n.req.Text, 24) + "'"
}

func (n *synthNode) Run(ctx context.Context, _ []audio.Result) (audio.Result, error) {
	return n.creator.Synthesize(ctx, n.req)
}

type convertNode struct {
	creator *audio.FileCreator
	output  string
	format  audio.Format
}

func (n *convertNode) Hash() string {
	return hashOf("convert", n.output)
}

func (n *convertNode) Name() string {
	return "write " + n.output
}

func (n *convertNode) Run(ctx context.Context, synthesized []audio.Result) (audio.Result, error) {
	return n.creator.Convert(ctx, synthesized[0], n.output, n.format)
}
