package utils

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const serviceName = "kanzlei-server"

// GenerateTraceId returns a fresh trace ID for an inbound request.
func GenerateTraceId() string {
	return uuid.New().String()
}

// LogEntry writes the message through the given entry at the requested level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	default:
		entry.Info(message)
	}
}

// LogMessage logs a message without request context.
func LogMessage(level, message string) {
	entry := log.WithFields(log.Fields{
		"service": serviceName,
	})

	LogEntry(entry, level, message)
}

// LogMessageWithFields logs a message enriched with the request's trace ID.
func LogMessageWithFields(ctx context.Context, level, message string) {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)
	entry := log.WithFields(log.Fields{
		"traceId": traceId,
		"service": serviceName,
	})

	LogEntry(entry, level, message)
}

// LogMessageWithFieldsAndError logs a message plus the causing error.
func LogMessageWithFieldsAndError(ctx context.Context, level, message string, err error) {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)
	entry := log.WithFields(log.Fields{
		"traceId": traceId,
		"service": serviceName,
		"cause":   err,
	})

	LogEntry(entry, level, message)
}
