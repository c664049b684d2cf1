// Package wav inspects and writes RIFF WAVE files.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

var ErrInvalid = errors.New("invalid wav file")

type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		if dec.Err() != nil {
			return Info{}, fmt.Errorf("%w %s: %v", ErrInvalid, path, dec.Err())
		}
		return Info{}, fmt.Errorf("%w %s", ErrInvalid, path)
	}
	dur, err := dec.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("%w %s: %v", ErrInvalid, path, err)
	}
	return Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   dur,
	}, nil
}

// Encode writes 16 bit little endian PCM as WAV.
func Encode(w io.WriteSeeker, pcm []byte, sampleRate, channels int) error {
	if len(pcm)%2 != 0 {
		return fmt.Errorf("%w: odd pcm length %d", ErrInvalid, len(pcm))
	}
	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, 1)
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: 16,
		Data:           data,
	})
	if err != nil {
		return err
	}
	return enc.Close()
}
