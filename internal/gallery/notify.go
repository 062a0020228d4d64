package gallery

import (
	"log/slog"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-visible message produced by a view-model operation
type Notice struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives notices; the rendering layer decides how to show them
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

type settings struct {
	notifier Notifier
	onChange func()
	log      *slog.Logger
}

type Option func(*settings)

func WithNotifier(n Notifier) Option {
	return func(s *settings) {
		s.notifier = n
	}
}

// WithOnChange registers a callback fired whenever the cached collection or the filtered view changes
func WithOnChange(fn func()) Option {
	return func(s *settings) {
		s.onChange = fn
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		notifier: NotifierFunc(func(Notice) {}),
		onChange: func() {},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *settings) notify(level Level, msg string, err error) {
	s.notifier.Notify(Notice{Level: level, Message: msg, Err: err})
}

func (s *settings) changed() {
	s.onChange()
}
