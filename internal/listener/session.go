// SPDX-License-Identifier: MIT
// Package listener drives the per-frame loop: it routes each frame to the
// wake word classifier or the clap detector depending on the mode, applies
// the resulting transition and dispatches its side effect.
package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"wakeup/internal/activation"
	"wakeup/internal/analysis"
	"wakeup/internal/audio"
	"wakeup/internal/dispatch"
	applog "wakeup/internal/log"
	"wakeup/internal/observe"
	"wakeup/internal/transport"
	"wakeup/internal/wakeword"
)

// maxReadErrors is how many consecutive failed reads end the loop.
const maxReadErrors = 50

// Options wires a Session. Classifier and Dispatcher are required.
type Options struct {
	Detector    analysis.DetectorConfig
	Activation  activation.Config
	SettleDelay time.Duration // Pause after a dispatch.

	Classifier wakeword.Classifier
	Dispatcher dispatch.Dispatcher
	Transport  transport.Transport // Optional.
	Metrics    *observe.Metrics    // Optional.

	Now   func() time.Time                                 // Default time.Now.
	Sleep func(ctx context.Context, d time.Duration) error // Default waits on a timer.
}

// Session owns all detection state for one run of the listener. It is
// driven from a single goroutine.
type Session struct {
	id         string
	detector   *analysis.ClapDetector
	machine    *activation.Machine
	classifier wakeword.Classifier
	dispatcher dispatch.Dispatcher
	transport  transport.Transport
	metrics    *observe.Metrics
	settle     time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewSession builds a Session in Idle.
func NewSession(opts Options) (*Session, error) {
	if opts.Classifier == nil {
		return nil, errors.New("listener: classifier is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("listener: dispatcher is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	s := &Session{
		id:         uuid.NewString(),
		detector:   analysis.NewClapDetector(opts.Detector),
		machine:    activation.NewMachine(opts.Activation),
		classifier: opts.Classifier,
		dispatcher: opts.Dispatcher,
		transport:  opts.Transport,
		metrics:    opts.Metrics,
		settle:     opts.SettleDelay,
		now:        opts.Now,
		sleep:      opts.Sleep,
	}
	applog.Debugf("Listener: Session %s created", s.id)
	return s, nil
}

// ID returns the session's unique id, attached to every published event.
func (s *Session) ID() string { return s.id }

// Mode returns the current mode.
func (s *Session) Mode() activation.Mode { return s.machine.Mode() }

// Run opens a stream from source with the classifier's frame geometry and
// processes frames until ctx is cancelled or the stream ends. The stream is
// closed exactly once on every exit path. Failure to open the stream is a
// *StartupError; a clean stop returns nil.
func (s *Session) Run(ctx context.Context, source audio.Source) error {
	stream, err := source.Open(s.classifier.SampleRate(), s.classifier.FrameLength())
	if err != nil {
		return &StartupError{Op: "open audio", Err: err}
	}
	defer func() {
		if err := stream.Close(); err != nil {
			applog.Warnf("Listener: Error closing audio stream: %v", err)
		}
	}()

	applog.Infof("Listener: Listening (%d Hz, %d samples/frame). Say the wake word to start clap detection.",
		s.classifier.SampleRate(), s.classifier.FrameLength())

	readErrors := 0
	for {
		if ctx.Err() != nil {
			applog.Infof("Listener: Shutting down")
			return nil
		}

		frame, err := stream.NextFrame()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				applog.Infof("Listener: End of input")
				return nil
			case errors.Is(err, audio.ErrStreamClosed), ctx.Err() != nil:
				return nil
			}

			readErrors++
			if s.metrics != nil {
				s.metrics.StreamErrors.Add(ctx, 1)
			}
			if readErrors >= maxReadErrors {
				return fmt.Errorf("audio input failing: %w", err)
			}
			applog.Debugf("Listener: Read error (%d in a row): %v", readErrors, err)
			continue
		}
		readErrors = 0

		s.Step(ctx, frame)
	}
}

// Step processes exactly one frame and performs at most one transition,
// which it returns. A dispatching transition blocks for the settle delay.
func (s *Session) Step(ctx context.Context, frame []int16) (activation.Transition, bool) {
	start := time.Now()
	now := s.now()
	mode := s.machine.Mode()

	var (
		tr activation.Transition
		ok bool
	)
	if mode == activation.Idle {
		tr, ok = s.pollWake(ctx, frame, now)
	} else if tr, ok = s.machine.Expire(now); !ok {
		tr, ok = s.detect(ctx, frame, now)
	}

	if s.metrics != nil {
		s.metrics.RecordFrame(ctx, mode.String(), time.Since(start))
	}
	if ok {
		s.apply(ctx, tr)
	}
	return tr, ok
}

func (s *Session) pollWake(ctx context.Context, frame []int16, now time.Time) (activation.Transition, bool) {
	index, err := s.classifier.Process(frame)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ClassifierErrors.Add(ctx, 1)
		}
		applog.Debugf("Listener: %v", fmt.Errorf("%w: %w", ErrClassifier, err))
		return activation.Transition{}, false
	}
	if !wakeword.Fired(index) {
		return activation.Transition{}, false
	}

	tr, ok := s.machine.Fire(activation.TriggerWake, now)
	if ok {
		s.detector.Reset()
		s.publish(transport.Event{Kind: transport.KindWake, Timestamp: now})
	}
	return tr, ok
}

func (s *Session) detect(ctx context.Context, frame []int16, now time.Time) (activation.Transition, bool) {
	mode := s.machine.Mode()
	pattern := s.detector.Process(analysis.Analyze(frame), now)

	if s.detector.LastClap().Equal(now) {
		if s.metrics != nil {
			s.metrics.Claps.Add(ctx, 1)
		}
		s.publish(transport.Event{Kind: transport.KindClap, From: mode.String(), Timestamp: now})
	}

	var trigger activation.Trigger
	switch pattern {
	case analysis.PatternDouble:
		trigger = activation.TriggerDoubleClap
	case analysis.PatternTriple:
		trigger = activation.TriggerTripleClap
	default:
		return activation.Transition{}, false
	}

	if s.metrics != nil {
		s.metrics.RecordPattern(ctx, pattern.String())
	}
	s.publish(transport.Event{Kind: transport.KindPattern, From: mode.String(), Pattern: pattern.String(), Timestamp: now})
	return s.machine.Fire(trigger, now)
}

// apply runs the consequences of a transition: detector gating, console
// banner, events, metrics and the dispatch with its settle delay.
func (s *Session) apply(ctx context.Context, tr activation.Transition) {
	s.detector.SetTripleOnly(tr.To == activation.TripleWait)
	s.announce(tr)

	s.publish(transport.Event{
		Kind:      transport.KindTransition,
		From:      tr.From.String(),
		To:        tr.To.String(),
		Action:    tr.Action.String(),
		Timestamp: tr.At,
	})
	if s.metrics != nil {
		s.metrics.RecordTransition(ctx, tr.From.String(), tr.To.String(), tr.Trigger.String(), int64(tr.To))
	}

	if tr.Action == activation.ActionNone {
		return
	}

	var err error
	switch tr.Action {
	case activation.ActionLaunchApps:
		err = s.dispatcher.LaunchApps(ctx)
	case activation.ActionPlayMedia:
		err = s.dispatcher.PlayMedia(ctx)
	}

	event := transport.Event{Kind: transport.KindDispatch, Action: tr.Action.String(), Timestamp: tr.At}
	if err != nil {
		applog.Errorf("Listener: %s failed: %v", tr.Action, err)
		event.Error = err.Error()
	}
	s.publish(event)
	if s.metrics != nil {
		s.metrics.RecordDispatch(ctx, tr.Action.String(), err)
	}

	if s.settle > 0 {
		if err := s.sleep(ctx, s.settle); err != nil {
			applog.Debugf("Listener: Settle interrupted: %v", err)
		}
	}
}

func (s *Session) announce(tr activation.Transition) {
	switch {
	case tr.To == activation.Active:
		applog.Infof("Listener: Wake word detected! Clap twice for apps, three times for media (%s)",
			s.machine.Remaining(tr.At).Round(time.Second))
	case tr.To == activation.TripleWait:
		applog.Infof("Listener: Double clap! Launching apps. Clap three times within %s for media",
			s.machine.Remaining(tr.At).Round(time.Second))
	case tr.Trigger == activation.TriggerTripleClap:
		applog.Infof("Listener: Triple clap! Playing media")
	case tr.From == activation.Active:
		applog.Infof("Listener: No clap pattern in time, listening for the wake word again")
	case tr.From == activation.TripleWait:
		applog.Infof("Listener: Triple clap window closed, listening for the wake word again")
	}
}

func (s *Session) publish(event transport.Event) {
	if s.transport == nil {
		return
	}
	event.SessionID = s.id
	if err := s.transport.Send(event); err != nil {
		applog.Debugf("Listener: Publishing %s event: %v", event.Kind, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
