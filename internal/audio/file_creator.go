// Package audio turns synthesis requests into audio files. Synthesized WAV
// files are kept in a cache directory named by a hash of the request, so
// an unchanged request never hits the engine twice.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/mrclmr/ttsgen/internal/tts"
	"github.com/mrclmr/ttsgen/internal/wav"
)

type Job struct {
	Request tts.Request
	Output  string
	Format  Format
}

type Result struct {
	Path      string
	Operation FileOperation
	Duration  time.Duration
	// Cached is true if no synthesis was needed.
	Cached bool
}

type FileCreator struct {
	synth      tts.Synthesizer
	execCmdCtx tts.ExecCmdCtx
	cacheDir   string
	cacheKey   string
}

type Option func(*FileCreator)

// WithCacheKey adds settings to the cache key that change the audio but
// are not part of a tts.Request, like an endpoint or a command line.
func WithCacheKey(key string) Option {
	return func(c *FileCreator) {
		c.cacheKey = key
	}
}

func NewFileCreator(
	synth tts.Synthesizer,
	execCmdCtx tts.ExecCmdCtx,
	cacheDir string,
	opts ...Option,
) (*FileCreator, error) {
	if err := mkdirAllIfNotExists(cacheDir); err != nil {
		return nil, err
	}
	c := &FileCreator{
		synth:      synth,
		execCmdCtx: execCmdCtx,
		cacheDir:   cacheDir,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *FileCreator) Create(ctx context.Context, job Job) (Result, error) {
	synthesized, err := c.Synthesize(ctx, job.Request)
	if err != nil {
		return Result{}, err
	}
	return c.Convert(ctx, synthesized, job.Output, job.Format)
}

// Synthesize returns the WAV file of req inside the cache directory.
func (c *FileCreator) Synthesize(ctx context.Context, req tts.Request) (Result, error) {
	name := c.cacheName(req)
	path := filepath.Join(c.cacheDir, name)

	info, err := wav.Inspect(path)
	switch {
	case err == nil:
		return Result{Path: path, Operation: skipped, Duration: info.Duration, Cached: true}, nil
	case !errors.Is(err, fs.ErrNotExist):
		slog.Warn("remove invalid cache file", "path", path, "err", err)
		if err := os.Remove(path); err != nil {
			return Result{}, err
		}
	}

	// Engines write to a hidden file first, an interrupted run must not
	// leave a broken file under the cache name.
	partial := filepath.Join(c.cacheDir, "."+name)
	err = c.synth.Synthesize(ctx, req, partial)
	if err != nil {
		_ = os.Remove(partial)
		return Result{}, err
	}
	info, err = wav.Inspect(partial)
	if err != nil {
		_ = os.Remove(partial)
		return Result{}, fmt.Errorf("%v: %w", c.synth.Backend(), err)
	}
	if err := os.Rename(partial, path); err != nil {
		return Result{}, err
	}
	slog.Debug("synthesized", "path", path, "duration", info.Duration)
	return Result{Path: path, Operation: created, Duration: info.Duration}, nil
}

// Convert writes the synthesized WAV to output in the given format.
func (c *FileCreator) Convert(ctx context.Context, synthesized Result, output string, format Format) (Result, error) {
	if err := mkdirAllIfNotExists(filepath.Dir(output)); err != nil {
		return Result{}, err
	}

	var op FileOperation
	var err error
	switch format {
	case Wav:
		op = copied
		err = copyFile(synthesized.Path, output)
	case Mp3:
		op = converted
		err = c.run(ctx, "ffmpeg", ffmpegArgs(synthesized.Path, output)...)
	case M4a:
		op = converted
		err = c.run(ctx, "afconvert", afconvertArgs(synthesized.Path, output)...)
	default:
		return Result{}, errors.New("unsupported audio format")
	}
	if err != nil {
		return Result{}, err
	}
	return Result{
		Path:      output,
		Operation: op,
		Duration:  synthesized.Duration,
		Cached:    synthesized.Cached,
	}, nil
}

func (c *FileCreator) cacheName(req tts.Request) string {
	backend := c.synth.Backend().String()
	return fmt.Sprintf("%s-%s.wav", backend, hashShort(
		backend,
		c.cacheKey,
		req.Model,
		req.Voice,
		req.Language,
		req.Speed,
		req.Text,
	))
}

func mkdirAllIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModePerm)
	}
	return nil
}

// RemoveOtherFiles removes all files in dir that are not in keep.
// Sub directories and files beginning with '.' are left alone.
func RemoveOtherFiles(dir string, keep []string) error {
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[norm.NFC.String(filepath.Clean(k))] = true
	}
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		// For filenames afconvert uses a different Unicode Normalization Form (NFC, NFD, NFKC, or NFKD).
		// The Go formed string is in the map. Actual filenames have different Unicode Normalization Form.
		normPath := norm.NFC.String(path)
		if keepSet[normPath] {
			continue
		}
		err = os.Remove(path)
		if err != nil {
			return err
		}
		slog.Info("removed", "path", normPath)
	}
	return nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[:1] == "." {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
