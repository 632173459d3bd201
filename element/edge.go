package element

import (
	"fmt"
	"math"

	"hydraulic/units"
)

// 管段类型定义
const (
	PipeType EdgeType = iota + 1
	NozzleType
	EductorType
)

func init() {
	AddEdge(PipeType, &EdgeConfig{Code: 'p', Name: "Pipe", New: func() Edge { return NewPipe() }})
	AddEdge(NozzleType, &EdgeConfig{Code: 'n', Name: "Nozzle", New: func() Edge { return NewNozzle() }})
	AddEdge(EductorType, &EdgeConfig{Code: 'e', Name: "Eductor", New: func() Edge { return NewEductor() }})
}

// EdgeBase 管段公共数据
type EdgeBase struct {
	name   string
	flow   *units.Value
	input  Node // 上游节点
	output Node // 下游节点
}

func newEdgeBase() EdgeBase {
	return EdgeBase{flow: units.New(units.VolFlow)}
}

// Name 管段名称
func (b *EdgeBase) Name() string { return b.name }

// SetName 设置名称
func (b *EdgeBase) SetName(name string) { b.name = name }

// InputNode 上游节点
func (b *EdgeBase) InputNode() Node { return b.input }

// OutputNode 下游节点
func (b *EdgeBase) OutputNode() Node { return b.output }

// SetInputNode 设置上游节点
func (b *EdgeBase) SetInputNode(node Node) error {
	if node == nil {
		return fmt.Errorf("%w: 空节点", ErrNodeType)
	}
	if b.input != nil {
		return fmt.Errorf("%w: 上游", ErrConnected)
	}
	b.input = node
	return nil
}

// SetOutputNode 设置下游节点
func (b *EdgeBase) SetOutputNode(node Node) error {
	if node == nil {
		return fmt.Errorf("%w: 空节点", ErrNodeType)
	}
	if b.output != nil {
		return fmt.Errorf("%w: 下游", ErrConnected)
	}
	b.output = node
	return nil
}

// ClearInput 清除上游节点
func (b *EdgeBase) ClearInput() { b.input = nil }

// ClearOutput 清除下游节点
func (b *EdgeBase) ClearOutput() { b.output = nil }

// Connects 两端均已连接
func (b *EdgeBase) Connects() bool { return b.input != nil && b.output != nil }

// Flow 缓存流量
func (b *EdgeBase) Flow(unit units.Unit) (float64, error) { return b.flow.Get(unit) }

// SetFlow 设置流量
func (b *EdgeBase) SetFlow(value float64, unit units.Unit) error { return b.flow.Set(value, unit) }

// energyDiff 上游与下游能量差(psi)
func (b *EdgeBase) energyDiff() (float64, error) {
	if !b.Connects() {
		return 0, fmt.Errorf("%w: %q 未连接", ErrIncomplete, b.name)
	}
	in, err := b.input.Energy(units.Psi)
	if err != nil {
		return 0, fmt.Errorf("上游节点能量: %w", err)
	}
	out, err := b.output.Energy(units.Psi)
	if err != nil {
		return 0, fmt.Errorf("下游节点能量: %w", err)
	}
	return in - out, nil
}

// direction 节点相对管段的方向：上游 +1，下游 -1，无关 0
func (b *EdgeBase) direction(node Node) float64 {
	switch {
	case node == nil:
		return 0
	case node == b.input:
		return 1
	case node == b.output:
		return -1
	}
	return 0
}

// sqrtLaw 平方根规律 q = sign(dE)·k·|dE|^0.5
func sqrtLaw(k, diff float64) float64 {
	if diff == 0 {
		return 0
	}
	return math.Copysign(k*math.Sqrt(math.Abs(diff)), diff)
}

// sqrtSlope 平方根规律的导数 k·0.5/|dE|^0.5，dE 为0时返回0
func sqrtSlope(k, diff float64) float64 {
	if diff == 0 {
		return 0
	}
	return k * 0.5 / math.Sqrt(math.Abs(diff))
}
