package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"hydraulic/element"
	"hydraulic/maths"
	"hydraulic/metrics"
	"hydraulic/network"
	"hydraulic/units"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver Newton-Raphson 管网求解器
// 未知量为压力未知节点的能量(psi)，方程为节点流量平衡
type Solver struct {
	net           *network.Network
	name          string
	tolerance     float64
	maxIterations int
	rand          *rand.Rand
	logger        *slog.Logger
	metrics       *metrics.Registry
	recorder      Recorder

	active     []int   // 压力未知节点索引
	iterations int     // 最近一次求解的迭代次数
	residual   float64 // 最近一次的残差

	// 远端喷嘴求解时，拆下喷嘴的节点以入口节点强制出流作为未知量
	unplugged int
	inputIdx  int
	nozzleK   float64
}

// New 创建求解器，默认不限制迭代次数
func New(net *network.Network, opts ...Option) *Solver {
	s := &Solver{
		net:       net,
		name:      nameNewton,
		tolerance: Tolerance,
		rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:    slog.Default(),
		unplugged: -1,
		inputIdx:  -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewBounded 创建有界求解器，达到 BoundedIterations 次后返回 ErrNotConverged
func NewBounded(net *network.Network, opts ...Option) *Solver {
	s := New(net, append([]Option{WithMaxIterations(BoundedIterations)}, opts...)...)
	s.name = nameBounded
	return s
}

// ActiveNodes 压力未知节点索引
func (s *Solver) ActiveNodes() []int {
	if s.active == nil {
		s.prepare()
	}
	return slices.Clone(s.active)
}

// Iterations 最近一次求解的迭代次数
func (s *Solver) Iterations() int { return s.iterations }

// LastResidual 最近一次求解结束时的残差
func (s *Solver) LastResidual() float64 { return s.residual }

// Residual 按当前节点状态计算各压力未知节点的流量不平衡(gpm)
func (s *Solver) Residual() ([]float64, error) {
	s.prepare()
	if len(s.active) == 0 {
		return nil, nil
	}
	f := mat.NewVecDense(len(s.active), nil)
	if err := s.evaluate(f); err != nil {
		return nil, err
	}
	return slices.Clone(f.RawVector().Data), nil
}

// Solve 求解管网
// 功能:
//  1. 确定压力未知节点
//  2. 在全部节点能量范围内随机生成初值
//  3. 迭代 J·Δ = -f 直到残差绝对值之和小于容差
//
// 返回:
//
//	nil 表示收敛或没有未知节点；超过迭代上限返回 *NotConvergedError，
//	矩阵奇异返回 ErrSingular，残差非有限返回 ErrDiverged，上下文取消返回 ctx.Err()
//
// 注意: 不检查管段完整性，出错时节点能量和管段流量保留最后一次迭代的值
func (s *Solver) Solve(ctx context.Context) (err error) {
	log := s.logger.With(slog.String("run", uuid.NewString()), slog.String("solver", s.name))
	start := time.Now()
	s.iterations, s.residual = 0, 0
	s.prepare()
	defer func() { s.finish(log, start, err) }()

	log.Info("开始求解",
		slog.Int("nodes", len(s.net.Nodes())),
		slog.Int("edges", len(s.net.Edges())),
		slog.Int("active", len(s.active)))
	if len(s.active) == 0 {
		return nil
	}
	if s.recorder != nil {
		s.recorder.Start(s.net, s.ActiveNodes())
	}
	x, err := s.guess()
	if err != nil {
		return err
	}
	return s.iterate(ctx, log, x)
}

// prepare 确定压力未知节点
func (s *Solver) prepare() {
	s.active = s.net.ActiveNodes()
}

// guess 初值：在全部节点能量的最小值与最大值之间随机取值
func (s *Solver) guess() (*mat.VecDense, error) {
	nodes := s.net.Nodes()
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, n := range nodes {
		e, err := n.Energy(units.Psi)
		if err != nil {
			return nil, fmt.Errorf("节点 %d 能量: %w", i, err)
		}
		lo, hi = min(lo, e), max(hi, e)
	}
	x := mat.NewVecDense(len(s.active), nil)
	for r, idx := range s.active {
		if idx == s.unplugged {
			p, err := nodes[idx].Pressure(units.Psi)
			if err != nil {
				return nil, fmt.Errorf("节点 %d 压力: %w", idx, err)
			}
			x.SetVec(r, math.Sqrt(p)*s.nozzleK)
			continue
		}
		g := lo + s.rand.Float64()*(hi-lo)
		x.SetVec(r, g)
		if err := nodes[idx].(element.Junction).SetEnergy(g, units.Psi); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// iterate Newton-Raphson 迭代：J·Δ = -f，x += Δ
func (s *Solver) iterate(ctx context.Context, log *slog.Logger, x *mat.VecDense) error {
	n := len(s.active)
	lu, err := maths.NewLU(n)
	if err != nil {
		return err
	}
	jac := mat.NewDense(n, n, nil)
	f := mat.NewVecDense(n, nil)
	delta := mat.NewVecDense(n, nil)

	s.iterations = 0
	if err := s.evaluate(f); err != nil {
		return err
	}
	s.record(x)
	for s.residual >= s.tolerance {
		if s.maxIterations > 0 && s.iterations >= s.maxIterations {
			return &NotConvergedError{Iterations: s.iterations, Residual: s.residual}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.fillJacobian(jac); err != nil {
			return err
		}
		if err := lu.Decompose(jac); err != nil {
			return fmt.Errorf("第 %d 次迭代矩阵分解失败: %w", s.iterations+1, err)
		}
		cond := lu.Cond()
		f.ScaleVec(-1, f)
		if err := lu.SolveReuse(f, delta); err != nil {
			return fmt.Errorf("第 %d 次迭代求解失败: %w", s.iterations+1, err)
		}
		x.AddVec(x, delta)
		if err := s.update(x); err != nil {
			return err
		}
		s.iterations++
		if err := s.evaluate(f); err != nil {
			return err
		}
		s.record(x)
		log.Debug("迭代",
			slog.Int("iteration", s.iterations),
			slog.Float64("residual", s.residual),
			slog.Float64("cond", cond))
	}
	return nil
}

// evaluate 计算残差 f = 流入 - 流出 - 强制出流，同时刷新管段流量
func (s *Solver) evaluate(f *mat.VecDense) error {
	nodes := s.net.Nodes()
	for r, idx := range s.active {
		node := nodes[idx]
		var sum float64
		for _, e := range node.InputEdges() {
			q, err := e.CalculateFlow()
			if err != nil {
				return fmt.Errorf("节点 %d 流入管段 %q: %w", idx, e.Name(), err)
			}
			sum += q
		}
		for _, e := range node.OutputEdges() {
			q, err := e.CalculateFlow()
			if err != nil {
				return fmt.Errorf("节点 %d 流出管段 %q: %w", idx, e.Name(), err)
			}
			sum -= q
		}
		forced, err := node.OutputFlow(units.Gpm)
		if err != nil {
			return err
		}
		f.SetVec(r, sum-forced)
	}
	s.residual = floats.Norm(f.RawVector().Data, 1)
	if math.IsNaN(s.residual) || math.IsInf(s.residual, 0) {
		return fmt.Errorf("%w: 第 %d 次迭代", ErrDiverged, s.iterations)
	}
	return nil
}

// fillJacobian J[r][c] = Σ流入管段偏导 - Σ流出管段偏导
// 拆下喷嘴的节点所在列只在入口节点行为1
func (s *Solver) fillJacobian(jac *mat.Dense) error {
	nodes := s.net.Nodes()
	for r, row := range s.active {
		for c, col := range s.active {
			if col == s.unplugged {
				v := 0.0
				if row == s.inputIdx {
					v = 1
				}
				jac.Set(r, c, v)
				continue
			}
			v, err := cell(nodes[row], nodes[col])
			if err != nil {
				return err
			}
			jac.Set(r, c, v)
		}
	}
	return nil
}

func cell(row, col element.Node) (float64, error) {
	var sum float64
	for _, e := range row.InputEdges() {
		j, err := e.Jacobian(col)
		if err != nil {
			return 0, err
		}
		sum += j
	}
	for _, e := range row.OutputEdges() {
		j, err := e.Jacobian(col)
		if err != nil {
			return 0, err
		}
		sum -= j
	}
	return sum, nil
}

// update 写回节点能量，拆下喷嘴的节点改写入口节点强制出流
func (s *Solver) update(x *mat.VecDense) error {
	nodes := s.net.Nodes()
	for r, idx := range s.active {
		if idx == s.unplugged {
			if err := nodes[s.inputIdx].SetOutputFlow(-x.AtVec(r), units.Gpm); err != nil {
				return err
			}
			continue
		}
		if err := nodes[idx].(element.Junction).SetEnergy(x.AtVec(r), units.Psi); err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) record(x *mat.VecDense) {
	if s.recorder != nil {
		s.recorder.Iteration(s.iterations, slices.Clone(x.RawVector().Data), s.residual)
	}
}

// finish 记录日志、指标和调试信息
func (s *Solver) finish(log *slog.Logger, start time.Time, err error) {
	status := metrics.StatusConverged
	switch {
	case err == nil:
		log.Info("求解完成",
			slog.Int("iterations", s.iterations),
			slog.Float64("residual", s.residual),
			slog.Duration("duration", time.Since(start)))
	case errors.Is(err, ErrNotConverged):
		status = metrics.StatusNotConverged
		log.Warn("求解未收敛", slog.Int("iterations", s.iterations), slog.Float64("residual", s.residual))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = metrics.StatusCanceled
		log.Warn("求解取消", slog.Int("iterations", s.iterations), slog.Any("error", err))
	default:
		status = metrics.StatusError
		log.Error("求解失败", slog.Int("iterations", s.iterations), slog.Any("error", err))
	}
	if s.metrics != nil {
		s.metrics.RecordSolve(s.name, status, s.iterations, s.residual, time.Since(start))
		s.metrics.SetNetworkSize(s.name, len(s.net.Nodes()), len(s.net.Edges()), len(s.active))
	}
	if s.recorder != nil {
		s.recorder.Finish(err)
	}
}
