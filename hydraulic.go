package hydraulic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"hydraulic/config"
	"hydraulic/debug"
	"hydraulic/element"
	"hydraulic/metrics"
	"hydraulic/network"
	"hydraulic/solver"
	"hydraulic/units"
)

// Hydraulic 管网求解
type Hydraulic struct {
	*network.Network
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// New 初始化，cfg 为空时使用默认配置，日志输出到 w
func New(cfg *config.Config, w io.Writer) *Hydraulic {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Hydraulic{
		Network: network.New(),
		Config:  cfg,
		Logger:  cfg.Logger(w),
	}
}

// AddNodes 按类型代码添加节点
// 参数:
//
//	codes - 节点类型代码，每个字符一个节点
//	elevations - 与 codes 一一对应的高程
//	unit - 高程单位
//
// 返回:
//
//	第一个节点的索引，错误信息
//
// 注意: 压力未知节点的初始压力为0；全部节点检查通过后才加入管网，出错时管网不变
func (h *Hydraulic) AddNodes(codes string, elevations []float64, unit units.Unit) (int, error) {
	if len(codes) != len(elevations) {
		return -1, fmt.Errorf("节点代码 %d 个，高程 %d 个", len(codes), len(elevations))
	}
	nodes := make([]element.Node, len(codes))
	for i := range len(codes) {
		n, err := element.NewNode(codes[i])
		if err != nil {
			return -1, err
		}
		if err := n.SetElevation(elevations[i], unit); err != nil {
			return -1, err
		}
		if j, ok := n.(element.Junction); ok {
			if err := j.SetPressure(0, units.Psi); err != nil {
				return -1, err
			}
		}
		nodes[i] = n
	}
	inputs := 0
	if _, err := h.InputIndex(); err == nil {
		inputs++
	}
	for _, n := range nodes {
		if n.Type() == element.InputNodeType {
			inputs++
		}
	}
	if inputs > 1 {
		return -1, fmt.Errorf("%w: 节点代码 %q", network.ErrSecondInput, codes)
	}
	first := len(h.Nodes())
	for _, n := range nodes {
		if _, err := h.AddNode(n); err != nil {
			return -1, err
		}
	}
	return first, nil
}

// AddPipe 添加管道
func (h *Hydraulic) AddPipe(length float64, lengthUnit units.Unit, diameter float64, diameterUnit units.Unit, c float64) (int, error) {
	p := element.NewPipe()
	if err := p.SetLength(length, lengthUnit); err != nil {
		return -1, err
	}
	if err := p.SetInnerDiameter(diameter, diameterUnit); err != nil {
		return -1, err
	}
	if err := p.SetC(c); err != nil {
		return -1, err
	}
	return h.AddEdge(p)
}

// AddANSIPipe 按 ANSI 公称尺寸添加管道
func (h *Hydraulic) AddANSIPipe(nominal float64, nominalUnit units.Unit, schedule element.Schedule, length float64, lengthUnit units.Unit) (int, error) {
	p, err := element.NewANSIPipe(nominal, nominalUnit, schedule)
	if err != nil {
		return -1, err
	}
	if err := p.SetLength(length, lengthUnit); err != nil {
		return -1, err
	}
	return h.AddEdge(p)
}

// AddNozzle 添加喷嘴，k 单位为 gpm/psi^0.5，要求压力单位为 psi
func (h *Hydraulic) AddNozzle(k, required float64) (int, error) {
	n := element.NewNozzle()
	if err := n.SetFactor(k, units.GpmPsi); err != nil {
		return -1, err
	}
	if err := n.SetRequiredPressure(required, units.Psi); err != nil {
		return -1, err
	}
	return h.AddEdge(n)
}

// AddEductor 添加引射器，k 单位为 gpm/psi^0.5
func (h *Hydraulic) AddEductor(k, concentration float64) (int, error) {
	e := element.NewEductor()
	if err := e.SetFactor(k, units.GpmPsi); err != nil {
		return -1, err
	}
	if err := e.SetConcentration(concentration); err != nil {
		return -1, err
	}
	return h.AddEdge(e)
}

// Connect 连接管段，links 为 {管段, 上游节点, 下游节点}
func (h *Hydraulic) Connect(links ...[3]int) error {
	for _, l := range links {
		if err := h.Link(l[0], l[1], l[2]); err != nil {
			return fmt.Errorf("连接管段 %d: %w", l[0], err)
		}
	}
	return nil
}

// Solve 求解管网，配置 bounded 时使用有界求解器
func (h *Hydraulic) Solve(ctx context.Context) (*debug.Record, error) {
	rec := &debug.Record{}
	var s *solver.Solver
	if h.Config.Solver.Bounded {
		s = solver.NewBounded(h.Network, h.options(rec)...)
	} else {
		s = solver.New(h.Network, h.options(rec)...)
	}
	err := s.Solve(ctx)
	return rec, errors.Join(err, h.dump(rec))
}

// SolveRemote 远端喷嘴求解
func (h *Hydraulic) SolveRemote(ctx context.Context) (*debug.Record, error) {
	rec := &debug.Record{}
	err := solver.NewRemote(h.Network, h.options(rec)...).Solve(ctx)
	return rec, errors.Join(err, h.dump(rec))
}

func (h *Hydraulic) options(rec *debug.Record) []solver.Option {
	if list := h.Incomplete(); len(list) > 0 {
		h.Logger.Warn("管段参数或连接不完整", slog.Any("edges", list))
	}
	return append(h.Config.Options(),
		solver.WithLogger(h.Logger),
		solver.WithMetrics(h.Metrics),
		solver.WithRecorder(rec))
}

// dump 按配置输出调试文件
func (h *Hydraulic) dump(rec *debug.Record) error {
	var errs []error
	for _, out := range []struct {
		path string
		r    interface{ Render(io.Writer) error }
	}{
		{h.Config.Debug.Record, rec},
		{h.Config.Debug.Chart, &debug.Charts{Record: rec}},
		{h.Config.Debug.Plot, &debug.Plot{Record: rec}},
	} {
		if out.path == "" {
			continue
		}
		if err := debug.WriteFile(out.path, out.r); err != nil {
			errs = append(errs, fmt.Errorf("输出 %s: %w", out.path, err))
			continue
		}
		h.Logger.Debug("输出调试文件", slog.String("path", out.path))
	}
	return errors.Join(errs...)
}
