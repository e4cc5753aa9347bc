package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/mwalimu/alama/core"
)

// RollbarLogger ships logs to rollbar while mirroring everything to a std
// logger, so local output stays useful when reporting is disabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// emit sends (msg, args...) through the given rollbar level and mirrors them
// to the std logger.
func (l RollbarLogger) emit(send func(...interface{}), msg string, args []interface{}) {
	send(append([]interface{}{msg}, args...)...)
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.emit(rollbar.Debug, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.emit(rollbar.Info, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.emit(rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.emit(rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.emit(rollbar.Critical, msg, args)
	rollbar.Wait() // flush before the process dies
	l.std.Fatal(msg)
}
