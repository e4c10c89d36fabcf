package logger

import (
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EchoZapLogger sends echo's own log lines (startup, recovered panics)
// through zap. Level is tracked for echo's benefit only; zap's core decides
// what is written.
type EchoZapLogger struct {
	sugar  *zap.SugaredLogger
	prefix string
	level  log.Lvl
}

var _ echo.Logger = (*EchoZapLogger)(nil)

func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{
		sugar: logger.Named("echo").Sugar(),
		level: levelFromZap(logger.Core()),
	}
}

// WithEchoLogger replaces e.Logger with a zap-backed logger.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)
}

func levelFromZap(core zapcore.Core) log.Lvl {
	switch {
	case core.Enabled(zapcore.DebugLevel):
		return log.DEBUG
	case core.Enabled(zapcore.InfoLevel):
		return log.INFO
	case core.Enabled(zapcore.WarnLevel):
		return log.WARN
	default:
		return log.ERROR
	}
}

func (l *EchoZapLogger) Output() io.Writer { return zapWriter{sugar: l.sugar} }
func (l *EchoZapLogger) SetOutput(io.Writer) {}
func (l *EchoZapLogger) Prefix() string { return l.prefix }
func (l *EchoZapLogger) SetPrefix(p string) { l.prefix = p }
func (l *EchoZapLogger) Level() log.Lvl { return l.level }
func (l *EchoZapLogger) SetLevel(v log.Lvl) { l.level = v }
func (l *EchoZapLogger) SetHeader(string) {}
func (l *EchoZapLogger) Print(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Debug(i ...interface{}) { l.sugar.Debug(i...) }
func (l *EchoZapLogger) Info(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Warn(i ...interface{}) { l.sugar.Warn(i...) }
func (l *EchoZapLogger) Error(i ...interface{}) { l.sugar.Error(i...) }
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.sugar.Fatal(i...) }
func (l *EchoZapLogger) Panic(i ...interface{}) { l.sugar.Panic(i...) }
func (l *EchoZapLogger) Printj(j log.JSON) { l.sugar.Infow("json_message", jsonFields(j)...) }
func (l *EchoZapLogger) Debugj(j log.JSON) { l.sugar.Debugw("json_message", jsonFields(j)...) }
func (l *EchoZapLogger) Infoj(j log.JSON) { l.sugar.Infow("json_message", jsonFields(j)...) }
func (l *EchoZapLogger) Warnj(j log.JSON) { l.sugar.Warnw("json_message", jsonFields(j)...) }
func (l *EchoZapLogger) Errorj(j log.JSON) { l.sugar.Errorw("json_message", jsonFields(j)...) }
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.sugar.Fatalw("json_message", jsonFields(j)...) }
func (l *EchoZapLogger) Panicj(j log.JSON) { l.sugar.Panicw("json_message", jsonFields(j)...) }

func (l *EchoZapLogger) Printf(format string, args ...interface{}) { l.sugar.Infof(format, args...) }
func (l *EchoZapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *EchoZapLogger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }
func (l *EchoZapLogger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *EchoZapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *EchoZapLogger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }
func (l *EchoZapLogger) Panicf(format string, args ...interface{}) { l.sugar.Panicf(format, args...) }

func jsonFields(j log.JSON) []interface{} {
	fields := make([]interface{}, 0, len(j)*2)
	for k, v := range j {
		fields = append(fields, k, v)
	}
	return fields
}

// zapWriter lets echo's Output() consumers (e.g. the std http server error
// log) write into zap, one entry per write.
type zapWriter struct {
	sugar *zap.SugaredLogger
}

func (w zapWriter) Write(p []byte) (int, error) {
	var j map[string]interface{}
	if json.Unmarshal(p, &j) == nil {
		w.sugar.Infow("json_message", jsonFields(j)...)
	} else {
		w.sugar.Info(string(trimNewline(p)))
	}
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}
