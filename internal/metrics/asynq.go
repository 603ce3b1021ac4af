package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumaker",
			Subsystem: "asynq",
			Name:      "tasks_total",
			Help:      "按结果统计的任务处理次数，attempt 区分首次执行与重试。",
		},
		[]string{"task_type", "result", "attempt"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumaker",
			Subsystem: "asynq",
			Name:      "task_duration_seconds",
			Help:      "任务处理耗时分布（秒）。",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"task_type"},
	)

	taskInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "resumaker",
			Subsystem: "asynq",
			Name:      "tasks_in_progress",
			Help:      "当前正在处理的任务数量。",
		},
		[]string{"task_type"},
	)
)

// taskResult 区分成功、可重试失败与放弃重试。
func taskResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, asynq.SkipRetry):
		return "skipped"
	default:
		return "error"
	}
}

func attemptLabel(ctx context.Context) string {
	if n, ok := asynq.GetRetryCount(ctx); ok && n > 0 {
		return "retry"
	}
	return "first"
}

// AsynqMetricsMiddleware 记录打印等后台任务的耗时与结果。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			taskInProgress.WithLabelValues(taskType).Inc()
			defer taskInProgress.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			tasksTotal.WithLabelValues(taskType, taskResult(err), attemptLabel(ctx)).Inc()
			return err
		})
	}
}
