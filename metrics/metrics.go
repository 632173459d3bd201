package metrics

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// 求解结果标签
const (
	StatusConverged    = "converged"
	StatusNotConverged = "not_converged"
	StatusCanceled     = "canceled"
	StatusError        = "error"
)

// Registry 求解器指标
type Registry struct {
	SolvesTotal       *prometheus.CounterVec
	SolveIterations   *prometheus.HistogramVec
	SolveDuration     *prometheus.HistogramVec
	LastResidual      *prometheus.GaugeVec
	ActiveNodes       *prometheus.GaugeVec
	NozzleHoldsTotal  prometheus.Counter
	NetworkNodesTotal prometheus.Gauge
	NetworkEdgesTotal prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry 全局指标实例
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry 创建独立的指标实例
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.SolvesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydraulic_solves_total",
			Help: "Total number of network solves",
		},
		[]string{"solver", "status"},
	)
	r.SolveIterations = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydraulic_solve_iterations",
			Help:    "Newton-Raphson iterations per solve",
			Buckets: []float64{1, 2, 4, 8, 16, 35, 64, 128, 256},
		},
		[]string{"solver"},
	)
	r.SolveDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydraulic_solve_duration_seconds",
			Help:    "Duration of network solves in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
		[]string{"solver"},
	)
	r.LastResidual = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hydraulic_last_residual",
			Help: "Sum of absolute flow imbalances after the last solve (gpm)",
		},
		[]string{"solver"},
	)
	r.ActiveNodes = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hydraulic_active_nodes",
			Help: "Number of unknown-pressure nodes in the last solve",
		},
		[]string{"solver"},
	)
	r.NozzleHoldsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "hydraulic_nozzle_holds_total",
			Help: "Total number of nozzles detached for remote solving",
		},
	)
	r.NetworkNodesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydraulic_network_nodes_total",
			Help: "Number of nodes in the last solved network",
		},
	)
	r.NetworkEdgesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydraulic_network_edges_total",
			Help: "Number of edges in the last solved network",
		},
	)
	return r
}

// RecordSolve 记录一次求解
func (r *Registry) RecordSolve(solver, status string, iterations int, residual float64, duration time.Duration) {
	r.SolvesTotal.WithLabelValues(solver, status).Inc()
	r.SolveIterations.WithLabelValues(solver).Observe(float64(iterations))
	r.SolveDuration.WithLabelValues(solver).Observe(duration.Seconds())
	r.LastResidual.WithLabelValues(solver).Set(residual)
}

// SetNetworkSize 记录网络规模
func (r *Registry) SetNetworkSize(solver string, nodes, edges, active int) {
	r.NetworkNodesTotal.Set(float64(nodes))
	r.NetworkEdgesTotal.Set(float64(edges))
	r.ActiveNodes.WithLabelValues(solver).Set(float64(active))
}

// RecordNozzleHold 记录一次喷嘴拆下
func (r *Registry) RecordNozzleHold() {
	r.NozzleHoldsTotal.Inc()
}

// GetPrometheusRegistry 底层 prometheus 注册表
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// WriteText 以文本格式输出全部指标
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("采集指标失败: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
