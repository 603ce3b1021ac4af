package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePrintResume = "print:resume"
)

// PrintResumePayload 描述一次服务端打印。
type PrintResumePayload struct {
	ResumeID      string `json:"resume_id"`
	CorrelationID string `json:"correlation_id"`
	Scale         int    `json:"scale,omitempty"`
}

// NewPrintResumeTask 构造打印任务。
func NewPrintResumeTask(p PrintResumePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode print payload: %w", err)
	}
	return asynq.NewTask(TypePrintResume, payload), nil
}

// ParsePrintResumePayload 解析任务载荷。
func ParsePrintResumePayload(t *asynq.Task) (PrintResumePayload, error) {
	var p PrintResumePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode print payload: %w", err)
	}
	if p.ResumeID == "" {
		return p, fmt.Errorf("decode print payload: missing resume id")
	}
	return p, nil
}

// NotifyChannel 是简历打印通知的 Redis 频道。
func NotifyChannel(resumeID string) string {
	return "resume_notify:" + resumeID
}
