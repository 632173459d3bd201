package solver

import (
	"log/slog"
	"math/rand/v2"

	"hydraulic/metrics"
	"hydraulic/network"
)

// Recorder 迭代记录接口
type Recorder interface {
	// Start 求解开始，active 为压力未知节点索引
	Start(net *network.Network, active []int)
	// Iteration 每次迭代后的未知量(psi 或 gpm)与残差，第0次为初值
	Iteration(iteration int, values []float64, residual float64)
	// Finish 求解结束
	Finish(err error)
}

// Option 求解器选项
type Option func(*Solver)

// WithTolerance 收敛容差
func WithTolerance(tol float64) Option {
	return func(s *Solver) { s.tolerance = tol }
}

// WithMaxIterations 最大迭代次数，0 表示不限制
func WithMaxIterations(n int) Option {
	return func(s *Solver) { s.maxIterations = max(n, 0) }
}

// WithSeed 以固定种子生成初值
func WithSeed(seed uint64) Option {
	return func(s *Solver) { s.rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithRand 指定随机源
func WithRand(r *rand.Rand) Option {
	return func(s *Solver) {
		if r != nil {
			s.rand = r
		}
	}
}

// WithLogger 日志
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics 指标
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Solver) { s.metrics = r }
}

// WithRecorder 迭代记录
func WithRecorder(r Recorder) Option {
	return func(s *Solver) { s.recorder = r }
}
