package core

// Logger is any leveled application logger.
// Implementations may special-case a user.User argument to attach identity
// to the report (see services/logger).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
