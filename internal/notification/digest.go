package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const TaskExpiryDigest = "notification:expiry_digest"

type DigestPayload struct {
	// Date overrides the day the digest is computed for; empty means today.
	Date string `json:"date,omitempty"`
}

func NewDigestTask(payload DigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryDigest, data), nil
}

type DigestSource interface {
	Summary(ctx context.Context, at time.Time) (Summary, error)
}

// DigestJob logs how many expiry alerts are open for the day.
type DigestJob struct {
	source DigestSource
	logger *slog.Logger
}

func NewDigestJob(source DigestSource, logger *slog.Logger) *DigestJob {
	return &DigestJob{source: source, logger: logger}
}

// Handle processes TaskExpiryDigest tasks.
func (j *DigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DigestPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode digest payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	var at time.Time
	if payload.Date != "" {
		parsed, err := time.Parse(time.DateOnly, payload.Date)
		if err != nil {
			return fmt.Errorf("parse digest date: %v: %w", err, asynq.SkipRetry)
		}
		at = parsed
	}

	summary, err := j.source.Summary(ctx, at)
	if err != nil {
		return fmt.Errorf("expiry digest: %w", err)
	}

	level := slog.LevelInfo
	if summary.Critical > 0 {
		level = slog.LevelWarn
	}
	j.logger.Log(ctx, level, "expiry digest",
		"total", summary.Total,
		"critical", summary.Critical,
		"warning", summary.Warning)
	return nil
}
