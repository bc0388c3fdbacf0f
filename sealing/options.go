package sealing

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type settings struct {
	rand         io.Reader
	now          func() time.Time
	log          *logrus.Logger
	durationDays uint64
}

func newSettings(opts []Option) settings {
	s := settings{
		rand:         rand.Reader,
		now:          time.Now,
		durationDays: DefaultDurationDays,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(io.Discard)
	}
	return s
}

// Option configures a Sealer, Unsealer or Coprocessor.
type Option func(*settings)

// WithRandom sets the source of keys and nonces.
func WithRandom(r io.Reader) Option {
	return func(s *settings) {
		if r != nil {
			s.rand = r
		}
	}
}

// WithClock sets the time source used for authorization windows.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(l *logrus.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithDurationDays sets how long an Unsealer's authorizations stay valid.
func WithDurationDays(days uint64) Option {
	return func(s *settings) {
		if days > 0 {
			s.durationDays = days
		}
	}
}
