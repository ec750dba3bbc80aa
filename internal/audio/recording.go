// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "wakeup/internal/log"
)

// RecordingSource wraps another Source and records every frame it yields
// into a 16-bit mono WAV file.
type RecordingSource struct {
	Source Source
	Path   string
}

// Open opens the wrapped source and the output file.
func (r RecordingSource) Open(sampleRate, frameLength int) (Stream, error) {
	inner, err := r.Source.Open(sampleRate, frameLength)
	if err != nil {
		return nil, err
	}
	rec, err := NewRecordingStream(inner, r.Path, sampleRate, frameLength)
	if err != nil {
		inner.Close()
		return nil, err
	}
	return rec, nil
}

// RecordingStream tees frames from an inner stream into a WAV file.
type RecordingStream struct {
	inner      Stream
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer // Reusable buffer for format conversion

	frames    int
	closeOnce sync.Once
	closeErr  error
}

// NewRecordingStream creates path and starts recording frames read from
// inner. Closing the RecordingStream also closes inner.
func NewRecordingStream(inner Stream, path string, sampleRate, frameLength int) (*RecordingStream, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}

	applog.Infof("Recorder: Recording input to %s", path)
	return &RecordingStream{
		inner:      inner,
		outputFile: file,
		wavEncoder: wav.NewEncoder(file, sampleRate, 16, 1, 1),
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 1,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, frameLength),
			SourceBitDepth: 16,
		},
	}, nil
}

// NextFrame reads from the inner stream and appends the frame to the file.
// A write failure is logged and does not interrupt the stream.
func (r *RecordingStream) NextFrame() ([]int16, error) {
	frame, err := r.inner.NextFrame()
	if err != nil {
		return frame, err
	}

	if cap(r.sampleBuf.Data) < len(frame) {
		r.sampleBuf.Data = make([]int, len(frame))
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(frame)]
	for i, sample := range frame {
		r.sampleBuf.Data[i] = int(sample)
	}

	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		applog.Errorf("Recorder: Error writing to WAV file: %v", err)
	} else {
		r.frames++
	}
	return frame, nil
}

// Frames returns the number of frames written so far.
func (r *RecordingStream) Frames() int { return r.frames }

// Close finalizes the WAV header, closes the file and the inner stream.
func (r *RecordingStream) Close() error {
	r.closeOnce.Do(func() {
		applog.Infof("Recorder: Wrote %d frames to %s", r.frames, r.outputFile.Name())
		r.closeErr = errors.Join(
			r.wavEncoder.Close(),
			r.outputFile.Close(),
			r.inner.Close(),
		)
	})
	return r.closeErr
}

var _ Source = RecordingSource{}
var _ Stream = (*RecordingStream)(nil)
