package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogLevel represents logging severity levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns string representation of log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps config strings onto levels, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// StructuredLogger provides production-ready logging
type StructuredLogger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level       LogLevel
	Service     string
	Version     string
	Environment string
	OutputPath  string
	Output      io.Writer
}

// NewStructuredLogger creates a new structured logger.
// Development environments get zerolog's console writer, everything else JSON lines.
func NewStructuredLogger(config LoggerConfig) (*StructuredLogger, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)

	switch {
	case config.Output != nil:
		w = config.Output
	case config.OutputPath == "" || config.OutputPath == "stdout":
		w = os.Stdout
	case config.OutputPath == "stderr":
		w = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = file, file
	}

	if config.Environment == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(w).
		Level(config.Level.zerolog()).
		With().
		Timestamp().
		Str("service", config.Service).
		Str("version", config.Version).
		Str("environment", config.Environment).
		Logger()

	return &StructuredLogger{zl: zl, closer: closer}, nil
}

// Nop returns a logger that discards everything
func Nop() *StructuredLogger {
	return &StructuredLogger{zl: zerolog.Nop()}
}

func (sl *StructuredLogger) log(event *zerolog.Event, message string, fields map[string]interface{}) {
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(message)
}

// Debug logs debug messages
func (sl *StructuredLogger) Debug(message string, fields ...map[string]interface{}) {
	sl.log(sl.zl.Debug(), message, mergeFields(fields...))
}

// Info logs info messages
func (sl *StructuredLogger) Info(message string, fields ...map[string]interface{}) {
	sl.log(sl.zl.Info(), message, mergeFields(fields...))
}

// Warn logs warning messages
func (sl *StructuredLogger) Warn(message string, fields ...map[string]interface{}) {
	sl.log(sl.zl.Warn(), message, mergeFields(fields...))
}

// Error logs error messages
func (sl *StructuredLogger) Error(message string, err error, fields ...map[string]interface{}) {
	sl.log(sl.zl.Error().Err(err), message, mergeFields(fields...))
}

// LogBusinessEvent logs business-specific events
func (sl *StructuredLogger) LogBusinessEvent(event string, resource string, operation string, fields ...map[string]interface{}) {
	logFields := mergeFields(fields...)
	logFields["component"] = "business"
	logFields["operation"] = operation
	logFields["resource"] = resource

	sl.log(sl.zl.Info(), event, logFields)
}

// LogSystemEvent logs system-level events
func (sl *StructuredLogger) LogSystemEvent(event string, fields ...map[string]interface{}) {
	logFields := mergeFields(fields...)
	logFields["component"] = "system"

	sl.log(sl.zl.Info(), event, logFields)
}

// WithComponent returns a child logger tagging every entry with component
func (sl *StructuredLogger) WithComponent(component string) *StructuredLogger {
	return &StructuredLogger{zl: sl.zl.With().Str("component", component).Logger()}
}

// Zerolog exposes the underlying logger
func (sl *StructuredLogger) Zerolog() zerolog.Logger {
	return sl.zl
}

// mergeFields merges multiple field maps
func mergeFields(fields ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}

// LoggingMiddleware provides request logging middleware
func (sl *StructuredLogger) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		// Skip logging for health checks
		if path == "/health" {
			c.Next()
			return
		}

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		event := sl.zl.Info()
		if c.Writer.Status() >= 500 {
			event = sl.zl.Error()
		}
		event = event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status_code", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("ip", c.ClientIP()).
			Int("bytes_out", c.Writer.Size())
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("HTTP Request")
	}
}

// Close closes the logger output
func (sl *StructuredLogger) Close() error {
	if sl.closer != nil {
		return sl.closer.Close()
	}
	return nil
}

// Global logger instance
var GlobalLogger = Nop()

// InitializeLogger initializes the global logger
func InitializeLogger(config LoggerConfig) error {
	l, err := NewStructuredLogger(config)
	if err != nil {
		return err
	}
	GlobalLogger = l
	return nil
}
