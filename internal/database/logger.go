package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Logger routes gorm's log output through zerolog
type Logger struct {
	level gormlogger.LogLevel
}

// NewLogger creates a gorm logger at Warn level
func NewLogger() *Logger {
	return &Logger{level: gormlogger.Warn}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &Logger{level: level}
}

func (l *Logger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		log.Info().Msgf(msg, args...)
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		log.Warn().Msgf(msg, args...)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		log.Error().Msgf(msg, args...)
	}
}

func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	var event *zerolog.Event
	switch {
	// not-found and duplicate-key are answered as API errors, not logged as failures
	case err != nil && l.level >= gormlogger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		event = log.Error().Err(err)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		event = log.Warn().Bool("slow", true)
	case l.level >= gormlogger.Info:
		event = log.Debug()
	default:
		return
	}

	sql, rows := fc()
	event.
		Dur("elapsed", elapsed).
		Int64("rows", rows).
		Str("sql", sql).
		Msg("Database query")
}
