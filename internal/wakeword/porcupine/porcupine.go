// SPDX-License-Identifier: MIT
// Package porcupine adapts the Picovoice Porcupine engine to
// wakeword.Classifier using its built-in keywords.
package porcupine

import (
	"fmt"
	"strings"
	"sync"

	pv "github.com/Picovoice/porcupine/binding/go/v3"

	applog "wakeup/internal/log"
	"wakeup/internal/wakeword"
)

// Keywords lists the built-in keywords that ship with the engine.
var Keywords = []string{
	string(pv.ALEXA),
	string(pv.AMERICANO),
	string(pv.BLUEBERRY),
	string(pv.BUMBLEBEE),
	string(pv.COMPUTER),
	string(pv.GRAPEFRUIT),
	string(pv.GRASSHOPPER),
	string(pv.HEY_GOOGLE),
	string(pv.HEY_SIRI),
	string(pv.JARVIS),
	string(pv.OK_GOOGLE),
	string(pv.PICOVOICE),
	string(pv.PORCUPINE),
	string(pv.TERMINATOR),
}

// Config selects the keyword and engine settings.
type Config struct {
	AccessKey   string
	Word        string
	Sensitivity float32 // 0..1, higher fires more readily.
	ModelPath   string  // Empty uses the bundled model.
}

// Classifier runs one Porcupine instance for a single keyword.
type Classifier struct {
	engine *pv.Porcupine
	word   string

	closeOnce sync.Once
	closeErr  error
}

// New resolves the keyword and initializes the engine. An unsupported word
// falls back to wakeword.DefaultWord with a warning.
func New(cfg Config) (*Classifier, error) {
	applog.Infof("Porcupine: Available wake words: %s", strings.Join(Keywords, ", "))

	word, ok := wakeword.Resolve(cfg.Word, Keywords)
	if !ok {
		applog.Warnf("Porcupine: %q not available, using %q instead", cfg.Word, word)
	}
	if cfg.AccessKey == "" {
		return nil, wakeword.ErrNoAccessKey
	}

	engine := &pv.Porcupine{
		AccessKey:       cfg.AccessKey,
		ModelPath:       cfg.ModelPath,
		BuiltInKeywords: []pv.BuiltInKeyword{pv.BuiltInKeyword(word)},
		Sensitivities:   []float32{cfg.Sensitivity},
	}
	if err := engine.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize Porcupine: %w", err)
	}

	applog.Infof("Porcupine: Wake word %q loaded (%d Hz, %d samples/frame)", word, pv.SampleRate, pv.FrameLength)
	return &Classifier{engine: engine, word: word}, nil
}

// Word returns the keyword in use after fallback.
func (c *Classifier) Word() string { return c.word }

// Process returns 0 when the keyword fired in frame and -1 otherwise.
func (c *Classifier) Process(frame []int16) (int, error) {
	return c.engine.Process(frame)
}

// SampleRate is the engine's required sample rate.
func (c *Classifier) SampleRate() int { return pv.SampleRate }

// FrameLength is the engine's required samples per frame.
func (c *Classifier) FrameLength() int { return pv.FrameLength }

// Close releases the engine once.
func (c *Classifier) Close() error {
	c.closeOnce.Do(func() {
		applog.Debugf("Porcupine: Releasing engine")
		c.closeErr = c.engine.Delete()
	})
	return c.closeErr
}

var _ wakeword.Classifier = (*Classifier)(nil)
