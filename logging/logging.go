package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/DeRuina/timberjack"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level and destination
// An empty File logs to Stderr; the interactive binary always sets one since the HUD owns the terminal
type Options struct {
	Level string
	File  string
}

// Logger bundles the root logger with its level control and closer
type Logger struct {
	*zap.Logger
	level  zap.AtomicLevel
	closer io.Closer
}

// New builds a console-encoded zap logger
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, errors.Wrapf(err, "log level %q", opts.Level)
		}
	}

	var (
		sink   zapcore.WriteSyncer
		closer io.Closer
	)
	if opts.File != "" {
		fw := fileWriter(opts.File)
		sink = zapcore.AddSync(fw)
		closer = fw
	} else {
		sink = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, level)
	return &Logger{
		Logger: zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
		level:  level,
		closer: closer,
	}, nil
}

// SetLevel changes the level at runtime
func (l *Logger) SetLevel(lvl zapcore.Level) {
	l.level.SetLevel(lvl)
}

// Close flushes buffered entries and releases the log file
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		CallerKey:     "line",
		LevelKey:      "level",
		MessageKey:    "message",
		TimeKey:       "time",
		NameKey:       "logger",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02 15:04:05.999"))
		},
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeCaller: func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + caller.TrimmedPath() + "]")
		},
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
}

func fileWriter(path string) *timberjack.Logger {
	return &timberjack.Logger{
		Filename:         path,
		MaxBackups:       3,
		MaxSize:          10, // megabytes
		MaxAge:           7,  // days
		Compression:      "none",
		LocalTime:        true,
		BackupTimeFormat: "2006-01-02-15-04-05",
	}
}
