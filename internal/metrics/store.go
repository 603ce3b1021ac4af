package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumaker",
			Subsystem: "store",
			Name:      "commands_total",
			Help:      "文档命令执行总数。",
		},
		[]string{"command", "result"},
	)

	pageAssignmentFlushes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumaker",
			Subsystem: "store",
			Name:      "page_assignment_flushes_total",
			Help:      "页面分配自动应用次数。",
		},
	)
)

// ObserveCommand 记录一次命令执行结果。
func ObserveCommand(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	commandsTotal.WithLabelValues(name, result).Inc()
}

// ObservePageAssignmentFlush 记录一次延迟应用。
func ObservePageAssignmentFlush() {
	pageAssignmentFlushes.Inc()
}
