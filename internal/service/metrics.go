package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// operationsTotal counts service operations by name and result, exposed on the private router /metrics
// operationsTotal 按操作与结果统计业务调用次数，通过私有路由 /metrics 暴露
var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "operations_total",
	Help:      "Roadmap service operations by result.",
}, []string{"op", "result"})

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(op, result).Inc()
}
