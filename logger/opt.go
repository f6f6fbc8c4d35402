package logger

import "log"

// A LoggerOptFn is a functional option configuring an ActivityLogger when constructing a new one.
type LoggerOptFn func(*ActivityLogger)

// WithEnv sets the environment ActivityLogger is operating in.
func WithEnv(env string) func(*ActivityLogger) {
	return func(l *ActivityLogger) {
		l.env = env
	}
}

// WithLevel sets the log level ActivityLogger uses.
func WithLevel(level LogLevel) func(*ActivityLogger) {
	return func(l *ActivityLogger) {
		l.ll = level
	}
}

// WithLogger sets the log.Logger ActivityLogger uses.
func WithLogger(log *log.Logger) func(*ActivityLogger) {
	return func(l *ActivityLogger) {
		l.l = log
	}
}

// WithSkip sets the number of frames in the call stack
// to skip in order to log the desired file and line number
// of the calling code.
func WithSkip(skip int) func(*ActivityLogger) {
	return func(l *ActivityLogger) {
		l.skip = skip
	}
}
