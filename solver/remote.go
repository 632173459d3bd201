package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hydraulic/element"
	"hydraulic/network"
	"hydraulic/units"

	"github.com/google/uuid"
)

// Remote 远端喷嘴求解器
// 逐个拆下未满足要求压力的喷嘴，把其上游节点压力固定为要求压力，
// 以入口节点的强制出流作为该节点的未知量求解，最后入口强制出流为全部喷嘴流量之和的相反数
type Remote struct {
	*Solver
}

// NewRemote 创建远端喷嘴求解器
func NewRemote(net *network.Network, opts ...Option) *Remote {
	s := New(net, opts...)
	s.name = nameRemote
	return &Remote{Solver: s}
}

// Solve 按喷嘴要求压力求入口流量
// 功能:
//  1. 压力未知节点的压力清零
//  2. 依次拆下未满足的喷嘴，其上游节点压力固定为要求压力，
//     该节点的未知量换成入口节点的流量
//  3. 求解后装回喷嘴，压力已达到要求的喷嘴不再单独求解
//  4. 入口节点强制出流设为 -Σ喷嘴流量
//
// 注意: 管网必须有且只有一个入口节点，否则返回 ErrNoInput
func (r *Remote) Solve(ctx context.Context) (err error) {
	s := r.Solver
	log := s.logger.With(slog.String("run", uuid.NewString()), slog.String("solver", s.name))
	start := time.Now()
	total := 0
	s.iterations, s.residual = 0, 0
	defer func() {
		s.iterations = total
		s.unplugged, s.inputIdx = -1, -1
		s.finish(log, start, err)
	}()

	input, err := s.net.InputIndex()
	if err != nil {
		return err
	}
	s.inputIdx = input
	nodes := s.net.Nodes()
	for _, idx := range s.net.ActiveNodes() {
		if err := nodes[idx].(element.Junction).SetPressure(0, units.Psi); err != nil {
			return err
		}
	}

	nozzles := s.net.Nozzles()
	log.Info("开始求解", slog.Int("input", input), slog.Int("nozzles", len(nozzles)))
	solved := make([]bool, len(nozzles))
	for i, edgeIdx := range nozzles {
		if solved[i] {
			continue
		}
		err := r.solveHeld(ctx, log, edgeIdx)
		total += s.iterations
		if err != nil {
			return fmt.Errorf("喷嘴 %d: %w", edgeIdx, err)
		}
		solved[i] = true
		for j, e := range nozzles {
			ok, err := r.satisfied(e)
			if err != nil {
				return err
			}
			solved[j] = solved[j] || ok
		}
	}

	var sum float64
	for _, edgeIdx := range nozzles {
		q, err := s.net.Edges()[edgeIdx].CalculateFlow()
		if err != nil {
			return fmt.Errorf("喷嘴 %d 流量: %w", edgeIdx, err)
		}
		sum += q
	}
	return nodes[input].SetOutputFlow(-sum, units.Gpm)
}

// solveHeld 拆下一个喷嘴求解，无论成败都装回
func (r *Remote) solveHeld(ctx context.Context, log *slog.Logger, edgeIdx int) (err error) {
	s := r.Solver
	if err := s.net.HoldNozzle(edgeIdx); err != nil {
		return err
	}
	defer func() {
		s.unplugged = -1
		err = errors.Join(err, s.net.ReinsertNozzle())
	}()

	_, nodeIdx, _ := s.net.Held()
	k, err := s.net.HeldNozzle().Factor(units.GpmPsi)
	if err != nil {
		return err
	}
	s.unplugged, s.nozzleK = nodeIdx, k
	if s.metrics != nil {
		s.metrics.RecordNozzleHold()
	}
	log.Debug("拆下喷嘴", slog.Int("edge", edgeIdx), slog.Int("node", nodeIdx))

	s.prepare()
	if s.recorder != nil {
		s.recorder.Start(s.net, s.ActiveNodes())
	}
	x, err := s.guess()
	if err != nil {
		return err
	}
	return s.iterate(ctx, log, x)
}

// satisfied 喷嘴上游压力是否达到要求压力
func (r *Remote) satisfied(edgeIdx int) (bool, error) {
	nozzle, ok := r.net.Edges()[edgeIdx].(*element.Nozzle)
	if !ok {
		return false, fmt.Errorf("%w: 管段 %d", network.ErrNotNozzle, edgeIdx)
	}
	p, err := nozzle.InputNode().Pressure(units.Psi)
	if err != nil {
		return false, err
	}
	required, err := nozzle.RequiredPressure(units.Psi)
	if err != nil {
		return false, err
	}
	return p >= required, nil
}
