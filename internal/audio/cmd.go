package audio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

func (c *FileCreator) run(ctx context.Context, name string, args ...string) error {
	slog.Debug("execute", "cmd", strings.Join(append([]string{name}, args...), " "))
	out, err := c.execCmdCtx(ctx, nil, name, args...).CombinedOutput()
	if err != nil {
		return cmdError(name, args, out, err)
	}
	return nil
}

func ffmpegArgs(src, dst string) []string {
	return []string{"-y", "-i", src, "-ab", "256k", "-ar", "44100", "-ac", "2", dst}
}

func afconvertArgs(src, dst string) []string {
	return []string{
		// For macOS Music App (iTunes) compatibility use m4af
		// despite it is described as lossless.
		// mp4f is incompatible with macOS Music App.
		"--file", "m4af",
		"--data", "aac",
		"--quality", "127",
		"--strategy", "2",
		src,
		dst,
	}
}

func hashShort(str string, data ...any) string {
	var buf bytes.Buffer
	buf.WriteString(str)
	enc := gob.NewEncoder(&buf)
	for _, d := range data {
		_ = enc.Encode(d)
	}
	h := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(h[:4])[:7]
}

func cmdError(cmd string, args []string, out []byte, err error) error {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return fmt.Errorf("err: %s %s\n%s: %w",
		cmd,
		strings.Join(args, " "),
		firstLine,
		err,
	)
}

func copyFile(src, dst string) error {
	fin, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = fin.Close()
	}()

	fout, err := os.Create(dst)
	if err != nil {
		return err
	}

	_, err = io.Copy(fout, fin)
	closeErr := fout.Close()
	if err != nil {
		return err
	}
	return closeErr
}
