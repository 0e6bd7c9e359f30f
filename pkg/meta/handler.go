package meta

import (
	"go.uber.org/zap"

	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

func init() {
	types.SetErrorHandler(func(err error) error { return defaultHandler(err) })
}

// Caller identifies the code on whose behalf a call is made, by class
// package identity.
type Caller string

// Anonymous is the caller token for code that belongs to no class.
const Anonymous Caller = ""

// As returns the caller token for a class package identity.
func As(pkg string) Caller {
	return Caller(pkg)
}

// String returns the package identity, or "anonymous caller".
func (c Caller) String() string {
	if c == Anonymous {
		return "anonymous caller"
	}
	return string(c)
}

// ErrorHandler receives every failure raised by the engine. The returned
// error is what the failing operation returns; a nil return does not
// suppress the failure. Handlers may panic to follow an exception
// convention.
type ErrorHandler func(err error) error

var defaultHandler ErrorHandler = passThrough

func passThrough(err error) error { return err }

// SetDefaultErrorHandler replaces the process-wide handler used by classes
// that do not declare their own. A nil handler restores the default.
func SetDefaultErrorHandler(h ErrorHandler) {
	if h == nil {
		h = passThrough
	}
	defaultHandler = h
}

// DefaultErrorHandler returns the process-wide handler.
func DefaultErrorHandler() ErrorHandler {
	return defaultHandler
}

var logger = zap.NewNop()

// SetLogger sets the logger used for declaration and build events. A nil
// logger disables logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the engine logger.
func Logger() *zap.Logger {
	return logger
}
