package logger

import (
	"go.uber.org/zap"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

// New returns a Logger whose caller annotations point at the call site of
// its methods.
func New() *Logger {
	z := zap.Must(zap.NewProduction(zap.AddCallerSkip(1)))
	return &Logger{sugar: z.Sugar()}
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// Global logger instance
var GlobalLogger = New()

// global carries one extra frame of caller skip so the package-level
// helpers below also report their call site, not this file.
var global = &Logger{sugar: GlobalLogger.sugar.WithOptions(zap.AddCallerSkip(1))}

// Convenience functions
func Info(format string, v ...interface{}) {
	global.Info(format, v...)
}

func Error(format string, v ...interface{}) {
	global.Error(format, v...)
}

func Debug(format string, v ...interface{}) {
	global.Debug(format, v...)
}

func Fatal(format string, v ...interface{}) {
	global.Fatal(format, v...)
}
