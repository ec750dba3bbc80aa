// SPDX-License-Identifier: MIT
/*
Package audio provides the frame sources the listener reads from:
live capture through PortAudio, WAV replay for offline runs, and a
recording tee that mirrors a stream into a WAV file.

Frames are mono signed 16-bit PCM of a fixed length chosen by the
caller at Open time. A frame returned by NextFrame is only valid until
the next call; sources reuse their buffers.
*/
package audio

import "errors"

// ErrStreamClosed is returned by NextFrame after Close.
var ErrStreamClosed = errors.New("audio: stream closed")

// Source opens frame streams with a fixed geometry.
type Source interface {
	Open(sampleRate, frameLength int) (Stream, error)
}

// Stream yields fixed-length frames. NextFrame blocks until a frame is
// available and returns io.EOF when a finite source is exhausted. Close
// releases the underlying device or file and is safe to call repeatedly.
type Stream interface {
	NextFrame() ([]int16, error)
	Close() error
}
