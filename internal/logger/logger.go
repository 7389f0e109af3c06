package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger for application-wide logging
type Logger struct {
	*zerolog.Logger

	// file is the optional log file; only the root logger owns it
	file io.Closer
}

// Config holds logger configuration
type Config struct {
	Level      string    // debug, info, warn, error
	Pretty     bool      // Enable pretty console output
	OutputFile string    // Optional file output path
	Output     io.Writer // Destination, defaults to os.Stdout
}

// New creates a new logger with the given configuration
// An unusable OutputFile is reported on the returned logger, which keeps
// writing to Output alone
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	// Pretty console output (for development)
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	var file *os.File
	var fileErr error
	if cfg.OutputFile != "" {
		file, fileErr = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if fileErr == nil {
			// File lines are always JSON, even when the console is pretty
			output = zerolog.MultiLevelWriter(output, file)
		}
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()

	l := &Logger{Logger: &zl}
	if file != nil {
		l.file = file
	}
	if fileErr != nil {
		l.Warn().Err(fileErr).Str("log_file", cfg.OutputFile).Msg("Log file unavailable, logging to console only")
	}
	return l
}

// NewDefault creates a logger with default settings
func NewDefault() *Logger {
	return New(Config{
		Level:  "info",
		Pretty: true,
	})
}

// Nop returns a logger that discards everything (handy in tests)
func Nop() *Logger {
	zl := zerolog.Nop()
	return &Logger{Logger: &zl}
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) with(ctx zerolog.Context) *Logger {
	zl := ctx.Logger()
	return &Logger{Logger: &zl}
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return l.with(l.With().Str("component", component))
}

// WithRequestID returns a logger with a request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with(l.With().Str("request_id", requestID))
}

// WithClient returns a logger describing the caller: the resolved client IP
// and how the request reached us
func (l *Logger) WithClient(ip, connectionType string) *Logger {
	return l.with(l.With().
		Str("client_ip", ip).
		Str("connection_type", connectionType))
}

// WithLookup returns a logger for one geolocation lookup
func (l *Logger) WithLookup(provider, ip string) *Logger {
	return l.with(l.With().
		Str("provider", provider).
		Str("ip", ip))
}
