// Package m3u writes extended M3U playlists.
package m3u

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

type entry struct {
	path string
	dur  time.Duration
}

type Playlist struct {
	w       io.Writer
	baseDir string
	entries []entry
}

// NewPlaylist returns a playlist with absolute file URLs.
func NewPlaylist(w io.Writer) *Playlist {
	return &Playlist{w: w}
}

// NewRelativePlaylist returns a playlist that refers to files below
// baseDir by relative path, so the directory can be moved as a whole.
func NewRelativePlaylist(w io.Writer, baseDir string) *Playlist {
	return &Playlist{w: w, baseDir: baseDir}
}

func (p *Playlist) Add(path string, dur time.Duration) {
	p.entries = append(p.entries, entry{path, dur})
}

func (p *Playlist) Write() error {
	b := &strings.Builder{}
	b.WriteString("#EXTM3U\n")
	for _, e := range p.entries {
		// Seconds are rounded down.
		fmt.Fprintf(b, "#EXTINF:%d,%s\n", int(e.dur.Seconds()), filepath.Base(e.path))
		b.WriteString(p.location(e.path))
		b.WriteString("\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Playlist) location(path string) string {
	if p.baseDir != "" {
		rel, err := filepath.Rel(p.baseDir, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return escape(filepath.ToSlash(rel))
		}
	}
	return "file://" + escape(filepath.ToSlash(path))
}

// escape percent encodes non ASCII bytes of the NFD form, which is what
// macOS Music expects.
func escape(input string) string {
	s := norm.NFD.String(input)
	b := &strings.Builder{}
	for i := range len(s) {
		c := s[i]
		if c > 127 || c == '%' {
			fmt.Fprintf(b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
