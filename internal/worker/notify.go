package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"resumaker/internal/tasks"
)

// 打印状态
const (
	NotifyCompleted = "completed"
	NotifyError     = "error"
)

// PrintNotifyMessage 通过 Redis Pub/Sub 转发给 /v1/ws 的客户端。
type PrintNotifyMessage struct {
	Status        string   `json:"status"`
	ResumeID      string   `json:"resume_id"`
	CorrelationID string   `json:"correlation_id"`
	ErrorCode     int      `json:"error_code"`
	ErrorMessage  string   `json:"error_message"`
	MissingKeys   []string `json:"missing_keys,omitempty"`
}

// Publisher 是 *redis.Client 的发布能力。
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

func publish(ctx context.Context, pub Publisher, msg PrintNotifyMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.NotifyChannel(msg.ResumeID)
	if err := pub.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
