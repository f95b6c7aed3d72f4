package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pinitdown/pkg/models"
)

// LogRequest logs one outbound HTTP request
func LogRequest(method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	default:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	}
}

// LogDownload logs the final state of one link
func LogDownload(result models.DownloadResult) {
	l := GetLogger().WithFields(map[string]interface{}{
		"input":    result.Input,
		"pin_id":   result.PinID,
		"outcome":  string(result.Outcome),
		"duration": result.Duration,
	})

	switch result.Outcome {
	case models.OutcomeSuccess:
		l.WithFields(map[string]interface{}{
			"path":  result.Path,
			"kind":  string(result.Kind),
			"bytes": result.Bytes,
		}).Info("Download completed")
	case models.OutcomeNoAsset:
		l.WithField("reason", result.Reason).Warn("No downloadable asset")
	default:
		l.WithField("reason", result.Reason).Error("Download failed")
	}
}

// LogBatch logs the totals of a finished batch
func LogBatch(total, succeeded, noAsset, failed int, elapsed time.Duration) {
	GetLogger().WithFields(map[string]interface{}{
		"total":      total,
		"succeeded":  succeeded,
		"no_asset":   noAsset,
		"failed":     failed,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("Batch finished")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	l := GetLogger().WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Debug("Component started")
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
