package element

import (
	"fmt"

	"hydraulic/units"
)

// Eductor 引射器
// 流量写入时，出口节点的强制出流随之变为 -流量·浓度
type Eductor struct {
	EdgeBase
	factor        *units.Value // 流量系数
	concentration float64      // 吸入浓度 [0,1)
	hasConc       bool
}

// NewEductor 创建引射器
func NewEductor() *Eductor {
	return &Eductor{EdgeBase: newEdgeBase(), factor: units.New(units.NozzleK)}
}

// Type 管段类型
func (*Eductor) Type() EdgeType { return EductorType }

// Factor 流量系数
func (e *Eductor) Factor(unit units.Unit) (float64, error) { return e.factor.Get(unit) }

// SetFactor 设置流量系数
func (e *Eductor) SetFactor(value float64, unit units.Unit) error { return e.factor.Set(value, unit) }

// Concentration 吸入浓度
func (e *Eductor) Concentration() float64 { return e.concentration }

// SetConcentration 设置吸入浓度
func (e *Eductor) SetConcentration(c float64) error {
	if c < 0 || c >= 1 {
		return fmt.Errorf("%w: %g", ErrConcentration, c)
	}
	e.concentration, e.hasConc = c, true
	return nil
}

// SetInputNode 上游只接受引射器入口
func (e *Eductor) SetInputNode(node Node) error {
	if _, ok := node.(*EductorInlet); !ok {
		return fmt.Errorf("%w: 引射器上游需要 EductorInlet", ErrNodeType)
	}
	return e.EdgeBase.SetInputNode(node)
}

// SetOutputNode 下游只接受引射器出口
func (e *Eductor) SetOutputNode(node Node) error {
	if _, ok := node.(*EductorOutlet); !ok {
		return fmt.Errorf("%w: 引射器下游需要 EductorOutlet", ErrNodeType)
	}
	return e.EdgeBase.SetOutputNode(node)
}

// SetFlow 设置流量并更新出口强制出流
func (e *Eductor) SetFlow(value float64, unit units.Unit) error {
	if err := e.EdgeBase.SetFlow(value, unit); err != nil {
		return err
	}
	if e.output == nil {
		return nil
	}
	gpm, _ := e.flow.Get(units.Gpm)
	return e.output.SetOutputFlow(-gpm*e.concentration, units.Gpm)
}

// CalculateFlow 流量 q = sign(dE)·k·|dE|^0.5
func (e *Eductor) CalculateFlow() (float64, error) {
	k, err := e.factor.Get(units.GpmPsi)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 引射器系数未设置", ErrIncomplete, e.name)
	}
	diff, err := e.energyDiff()
	if err != nil {
		return 0, err
	}
	q := sqrtLaw(k, diff)
	if err := e.SetFlow(q, units.Gpm); err != nil {
		return 0, err
	}
	return q, nil
}

// Jacobian 上游为正，下游为负
func (e *Eductor) Jacobian(node Node) (float64, error) {
	k, err := e.factor.Get(units.GpmPsi)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 引射器系数未设置", ErrIncomplete, e.name)
	}
	diff, err := e.energyDiff()
	if err != nil {
		return 0, err
	}
	return e.direction(node) * sqrtSlope(k, diff), nil
}

// IsComplete 参数与连接是否完整
func (e *Eductor) IsComplete() bool {
	return e.factor.IsSet() && e.hasConc && e.Connects()
}
