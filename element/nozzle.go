package element

import (
	"fmt"

	"hydraulic/units"
)

// Nozzle 喷嘴，出口必须为末端节点
type Nozzle struct {
	EdgeBase
	factor   *units.Value // 喷嘴系数
	required *units.Value // 要求压力
}

// NewNozzle 创建喷嘴
func NewNozzle() *Nozzle {
	return &Nozzle{
		EdgeBase: newEdgeBase(),
		factor:   units.New(units.NozzleK),
		required: units.New(units.Pressure),
	}
}

// Type 管段类型
func (*Nozzle) Type() EdgeType { return NozzleType }

// Factor 喷嘴系数
func (n *Nozzle) Factor(unit units.Unit) (float64, error) { return n.factor.Get(unit) }

// SetFactor 设置喷嘴系数
func (n *Nozzle) SetFactor(value float64, unit units.Unit) error { return n.factor.Set(value, unit) }

// RequiredPressure 要求压力
func (n *Nozzle) RequiredPressure(unit units.Unit) (float64, error) { return n.required.Get(unit) }

// SetRequiredPressure 设置要求压力
func (n *Nozzle) SetRequiredPressure(value float64, unit units.Unit) error {
	return n.required.Set(value, unit)
}

// SetOutputNode 设置下游节点，只接受末端节点
func (n *Nozzle) SetOutputNode(node Node) error {
	if _, ok := node.(*EndNode); !ok {
		return fmt.Errorf("%w: 喷嘴出口需要 EndNode", ErrNodeType)
	}
	return n.EdgeBase.SetOutputNode(node)
}

// CalculateFlow 流量 q = sign(dE)·k·|dE|^0.5
func (n *Nozzle) CalculateFlow() (float64, error) {
	k, err := n.factor.Get(units.GpmPsi)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 喷嘴系数未设置", ErrIncomplete, n.name)
	}
	diff, err := n.energyDiff()
	if err != nil {
		return 0, err
	}
	q := sqrtLaw(k, diff)
	if err := n.SetFlow(q, units.Gpm); err != nil {
		return 0, err
	}
	return q, nil
}

// Jacobian 只对上游节点有偏导
func (n *Nozzle) Jacobian(node Node) (float64, error) {
	k, err := n.factor.Get(units.GpmPsi)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 喷嘴系数未设置", ErrIncomplete, n.name)
	}
	diff, err := n.energyDiff()
	if err != nil {
		return 0, err
	}
	if node == nil || node != n.input {
		return 0, nil
	}
	return sqrtSlope(k, diff), nil
}

// IsComplete 参数与连接是否完整
func (n *Nozzle) IsComplete() bool {
	return n.factor.IsSet() && n.required.IsSet() && n.Connects()
}
