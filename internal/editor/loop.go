package editor

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrLoopClosed is returned by Do once the loop has stopped.
var ErrLoopClosed = errors.New("editor: loop closed")

const (
	// DefaultFrameInterval is roughly one display refresh.
	DefaultFrameInterval = 16 * time.Millisecond
	// DefaultUpdateInterval bounds how often coefficients are pushed
	// while a point is dragged.
	DefaultUpdateInterval = 20 * time.Millisecond
)

type request struct {
	fn    func(*Session) error
	reply chan error
}

// Loop owns a Session on a single goroutine. Events submitted with Do run
// in arrival order; a frame ticker redraws and coefficient updates are
// coalesced to at most one per update interval.
type Loop struct {
	session        *Session
	frameInterval  time.Duration
	updateInterval time.Duration
	logger         *slog.Logger

	requests chan request
	done     chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrameInterval sets the redraw period. Zero disables periodic redraws.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d >= 0 {
			l.frameInterval = d
		}
	}
}

// WithUpdateInterval sets the minimum spacing of coefficient syncs. Zero
// syncs after every event.
func WithUpdateInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d >= 0 {
			l.updateInterval = d
		}
	}
}

// WithLoopLogger sets the loop logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop wraps s. The session must not be used directly once Run starts.
func NewLoop(s *Session, opts ...LoopOption) *Loop {
	l := &Loop{
		session:        s,
		frameInterval:  DefaultFrameInterval,
		updateInterval: DefaultUpdateInterval,
		logger:         s.logger,
		requests:       make(chan request),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Do runs fn on the loop goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*Session) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}

	// Once accepted, the request is answered before done is closed.
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled. It performs a final sync
// before returning so the audio stage sees the last edit.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	var frames <-chan time.Time
	if l.frameInterval > 0 {
		ticker := time.NewTicker(l.frameInterval)
		defer ticker.Stop()
		frames = ticker.C
	}

	update := time.NewTimer(l.updateInterval)
	defer update.Stop()
	pending := true

	l.logger.Debug("editor loop started", "frame_interval", l.frameInterval, "update_interval", l.updateInterval)

	for {
		select {
		case <-ctx.Done():
			_ = l.session.Sync()
			l.session.Redraw()
			l.logger.Debug("editor loop stopped", "version", l.session.Model().Version())
			return nil

		case req := <-l.requests:
			req.reply <- req.fn(l.session)
			switch {
			case !l.session.Dirty():
			case l.updateInterval == 0:
				_ = l.session.Sync()
			case !pending:
				update.Reset(l.updateInterval)
				pending = true
			}

		case <-update.C:
			pending = false
			_ = l.session.Sync()

		case <-frames:
			l.session.Redraw()
		}
	}
}
