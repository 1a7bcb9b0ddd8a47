// Package log exposes per-subsystem logger handles over a shared zap core.
// Call sites pass the subsystem handle first, matching the house style:
//
//	log.Warnf(log.OrderMgr, "order %d expired", id)
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SubLogger is a named handle for one subsystem's log stream
type SubLogger struct {
	name string
	s    *zap.SugaredLogger
}

// Subsystem handles registered at startup
var (
	Global       *SubLogger
	DatabaseMgr  *SubLogger
	LedgerSys    *SubLogger
	FundsSys     *SubLogger
	OrderMgr     *SubLogger
	RateSys      *SubLogger
	HistorySys   *SubLogger
	WalletMgr    *SubLogger
	EngineMgr    *SubLogger
	APIServerMgr *SubLogger

	mu         sync.RWMutex
	root       *zap.SugaredLogger
	subLoggers = map[string]*SubLogger{}
)

func init() {
	l, _ := zap.NewProduction()
	setup(l)
}

// Configure replaces the backing core. level accepts zap level strings
// (debug, info, warn, error); json toggles structured versus console output.
func Configure(level string, json bool) error {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	setup(l)
	return nil
}

func setup(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l.Sugar()
	Global = register("global")
	DatabaseMgr = register("database")
	LedgerSys = register("ledger")
	FundsSys = register("funds")
	OrderMgr = register("p2p_orders")
	RateSys = register("rates")
	HistorySys = register("history")
	WalletMgr = register("wallets")
	EngineMgr = register("engine")
	APIServerMgr = register("api")
}

// register must be called with mu held
func register(name string) *SubLogger {
	sl := &SubLogger{name: name, s: root.Named(name)}
	subLoggers[name] = sl
	return sl
}

func (sl *SubLogger) logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sl.s
}

// Debugf logs at debug level with Printf semantics
func Debugf(sl *SubLogger, format string, v ...interface{}) {
	sl.logger().Debugf(format, v...)
}

// Infof logs at info level with Printf semantics
func Infof(sl *SubLogger, format string, v ...interface{}) {
	sl.logger().Infof(format, v...)
}

// Warnf logs at warn level with Printf semantics
func Warnf(sl *SubLogger, format string, v ...interface{}) {
	sl.logger().Warnf(format, v...)
}

// Errorf logs at error level with Printf semantics
func Errorf(sl *SubLogger, format string, v ...interface{}) {
	sl.logger().Errorf(format, v...)
}

// Debugln logs at debug level with Println semantics
func Debugln(sl *SubLogger, v ...interface{}) {
	sl.logger().Debug(v...)
}

// Infoln logs at info level with Println semantics
func Infoln(sl *SubLogger, v ...interface{}) {
	sl.logger().Info(v...)
}

// Warnln logs at warn level with Println semantics
func Warnln(sl *SubLogger, v ...interface{}) {
	sl.logger().Warn(v...)
}

// Errorln logs at error level with Println semantics
func Errorln(sl *SubLogger, v ...interface{}) {
	sl.logger().Error(v...)
}

// CloseLogger flushes buffered entries; call on shutdown
func CloseLogger() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}
