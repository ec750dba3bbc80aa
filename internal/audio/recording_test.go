// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"io"
	"path/filepath"
	"slices"
	"testing"
)

// sliceStream serves canned frames and counts Close calls.
type sliceStream struct {
	frames [][]int16
	next   int
	closes int
}

func (s *sliceStream) NextFrame() ([]int16, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func (s *sliceStream) Close() error {
	s.closes++
	return nil
}

type sliceSource struct {
	stream *sliceStream
	err    error
}

func (s sliceSource) Open(int, int) (Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

func TestRecordingStreamRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.wav")
	frames := [][]int16{
		{0, 100, -100, 32767},
		{-32768, 5, 6, 7},
		{1, 2, 3, 4},
	}
	inner := &sliceStream{frames: frames}

	rec, err := NewRecordingStream(inner, path, testSampleRate, 4)
	if err != nil {
		t.Fatalf("NewRecordingStream: %v", err)
	}
	for range frames {
		if _, err := rec.NextFrame(); err != nil {
			t.Fatalf("NextFrame: %v", err)
		}
	}
	if _, err := rec.NextFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF from exhausted inner stream, got %v", err)
	}
	if rec.Frames() != len(frames) {
		t.Errorf("Frames() = %d, want %d", rec.Frames(), len(frames))
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if inner.closes != 1 {
		t.Errorf("inner closed %d times, want 1", inner.closes)
	}

	replay, err := FileSource{Path: path}.Open(testSampleRate, 4)
	if err != nil {
		t.Fatalf("replay Open: %v", err)
	}
	defer replay.Close()
	for i, want := range frames {
		got, err := replay.NextFrame()
		if err != nil {
			t.Fatalf("replay frame %d: %v", i, err)
		}
		if !slices.Equal(got, want) {
			t.Errorf("frame %d = %v, want %v", i, got, want)
		}
	}
}

func TestRecordingSource(t *testing.T) {
	t.Run("Wraps inner stream", func(t *testing.T) {
		inner := &sliceStream{frames: [][]int16{{1, 2}}}
		src := RecordingSource{Source: sliceSource{stream: inner}, Path: filepath.Join(t.TempDir(), "r.wav")}

		stream, err := src.Open(testSampleRate, 2)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, ok := stream.(*RecordingStream); !ok {
			t.Fatalf("Open returned %T, want *RecordingStream", stream)
		}
		stream.Close()
		if inner.closes != 1 {
			t.Errorf("inner closed %d times", inner.closes)
		}
	})

	t.Run("Inner open fails", func(t *testing.T) {
		openErr := errors.New("no device")
		src := RecordingSource{Source: sliceSource{err: openErr}, Path: filepath.Join(t.TempDir(), "r.wav")}
		if _, err := src.Open(testSampleRate, 2); !errors.Is(err, openErr) {
			t.Errorf("Open error = %v, want %v", err, openErr)
		}
	})

	t.Run("Output not creatable", func(t *testing.T) {
		inner := &sliceStream{}
		src := RecordingSource{Source: sliceSource{stream: inner}, Path: "/nonexistent/dir/r.wav"}
		if _, err := src.Open(testSampleRate, 2); err == nil {
			t.Fatal("expected error for bad output path")
		}
		if inner.closes != 1 {
			t.Errorf("inner stream not released on failure, closes=%d", inner.closes)
		}
	})
}
