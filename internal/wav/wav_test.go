package wav

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sine(sampleRate int, dur time.Duration) []byte {
	n := int(dur.Seconds() * float64(sampleRate))
	pcm := make([]byte, 2*n)
	for i := range n {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)) * 8000)
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(v))
	}
	return pcm
}

func TestEncodeInspect(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		channels   int
		dur        time.Duration
	}{
		{"mono 22050", 22050, 1, time.Second},
		{"mono 16000", 16000, 1, 500 * time.Millisecond},
		{"stereo 44100", 44100, 2, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.wav")
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			// Interleaved channels need channels times the samples for the same duration.
			pcm := sine(tt.sampleRate*tt.channels, tt.dur)
			err = Encode(f, pcm, tt.sampleRate, tt.channels)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			_ = f.Close()

			info, err := Inspect(path)
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if info.SampleRate != tt.sampleRate {
				t.Fatalf("SampleRate = %d, want %d", info.SampleRate, tt.sampleRate)
			}
			if info.Channels != tt.channels {
				t.Fatalf("Channels = %d, want %d", info.Channels, tt.channels)
			}
			if info.BitDepth != 16 {
				t.Fatalf("BitDepth = %d, want 16", info.BitDepth)
			}
			if diff := info.Duration - tt.dur; diff < -50*time.Millisecond || diff > 50*time.Millisecond {
				t.Fatalf("Duration = %v, want about %v", info.Duration, tt.dur)
			}
		})
	}
}

func TestEncode_OddLength(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "odd.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = f.Close()
	}()
	err = Encode(f, []byte{1, 2, 3}, 22050, 1)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Encode() error = %v, want %v", err, ErrInvalid)
	}
}

func TestInspect_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.wav")
	err := os.WriteFile(path, []byte("this is not a wav file, just some text"), 0o600)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Inspect(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Inspect() error = %v, want %v", err, ErrInvalid)
	}
}

func TestInspect_NotExist(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Inspect() error = %v, want %v", err, os.ErrNotExist)
	}
}
