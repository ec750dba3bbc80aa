// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "wakeup/internal/log"
)

// ErrInvalidWAV is returned when a file is not a PCM WAV file.
var ErrInvalidWAV = errors.New("audio: not a valid WAV file")

// FileSource replays a WAV file as frames. Multi-channel files are reduced
// to their first channel and other bit depths are scaled to 16 bits. The
// file's sample rate must match the requested one.
type FileSource struct {
	Path string
}

// Open opens the file and validates its format.
func (s FileSource) Open(sampleRate, frameLength int) (Stream, error) {
	if frameLength <= 0 {
		return nil, fmt.Errorf("invalid frame length %d", frameLength)
	}

	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("%s: %w", s.Path, ErrInvalidWAV)
	}
	if int(decoder.SampleRate) != sampleRate {
		file.Close()
		return nil, fmt.Errorf("%s: sample rate %d Hz, want %d Hz", s.Path, decoder.SampleRate, sampleRate)
	}

	channels := int(decoder.NumChans)
	applog.Infof("FileSource: Replaying %s (%d Hz, %d channel(s), %d-bit)",
		s.Path, decoder.SampleRate, channels, decoder.BitDepth)

	return &fileStream{
		file:     file,
		decoder:  decoder,
		channels: channels,
		shift:    int(decoder.BitDepth) - 16,
		unsigned: decoder.BitDepth == 8,
		frame:    make([]int16, frameLength),
		pcm: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:   make([]int, frameLength*channels),
		},
	}, nil
}

type fileStream struct {
	file     *os.File
	decoder  *wav.Decoder
	channels int
	shift    int  // Bits to drop (or add, when negative) to reach 16.
	unsigned bool // 8-bit WAV is offset binary.
	frame    []int16
	pcm      *audio.IntBuffer

	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NextFrame returns the next frame, zero-padding a short final frame, and
// io.EOF once the data chunk is exhausted.
func (f *fileStream) NextFrame() ([]int16, error) {
	if f.closed {
		return nil, ErrStreamClosed
	}

	f.pcm.Data = f.pcm.Data[:cap(f.pcm.Data)]
	n, err := f.decoder.PCMBuffer(f.pcm)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to decode input file: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	samples := n / f.channels
	for i := range f.frame {
		if i >= samples {
			f.frame[i] = 0
			continue
		}
		f.frame[i] = f.toInt16(f.pcm.Data[i*f.channels])
	}
	return f.frame, nil
}

func (f *fileStream) toInt16(v int) int16 {
	if f.unsigned {
		v -= 128
	}
	switch {
	case f.shift > 0:
		v >>= f.shift
	case f.shift < 0:
		v <<= -f.shift
	}
	return int16(v)
}

// Close closes the file once.
func (f *fileStream) Close() error {
	f.closeOnce.Do(func() {
		f.closed = true
		f.closeErr = f.file.Close()
	})
	return f.closeErr
}

var _ Source = FileSource{}
var _ Stream = (*fileStream)(nil)
