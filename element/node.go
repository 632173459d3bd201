package element

import (
	"slices"

	"hydraulic/units"
)

// 节点类型定义
const (
	EndNodeType NodeType = iota + 1
	ConnectionNodeType
	InputNodeType
	EductorInletType
	EductorOutletType
)

func init() {
	AddNode(EndNodeType, &NodeConfig{Code: 'e', Name: "EndNode", New: func() Node { return NewEndNode() }})
	AddNode(ConnectionNodeType, &NodeConfig{Code: 'c', Name: "ConnectionNode", New: func() Node { return NewConnectionNode() }})
	AddNode(InputNodeType, &NodeConfig{Code: 'i', Name: "InputNode", New: func() Node { return NewInputNode() }})
	AddNode(EductorInletType, &NodeConfig{Code: 'n', Name: "EductorInlet", New: func() Node { return NewEductorInlet() }})
	AddNode(EductorOutletType, &NodeConfig{Code: 'o', Name: "EductorOutlet", New: func() Node { return NewEductorOutlet() }})
}

// NodeBase 节点公共数据
type NodeBase struct {
	name      string
	elevation *units.Value // 高程
	energy    *units.Value // 能量缓存，nil 表示失效
	input     []Edge       // 流入管段
	output    []Edge       // 流出管段
	outFlow   *units.Value // 强制出流
}

func newNodeBase() NodeBase {
	outFlow, _ := units.NewValue(units.VolFlow, 0, units.Gpm)
	return NodeBase{elevation: units.New(units.Length), outFlow: outFlow}
}

// Base 底层数据
func (b *NodeBase) Base() *NodeBase { return b }

// Name 节点名称
func (b *NodeBase) Name() string { return b.name }

// SetName 设置名称
func (b *NodeBase) SetName(name string) { b.name = name }

// Elevation 高程
func (b *NodeBase) Elevation(unit units.Unit) (float64, error) { return b.elevation.Get(unit) }

// SetElevation 设置高程
func (b *NodeBase) SetElevation(value float64, unit units.Unit) error {
	if err := b.elevation.Set(value, unit); err != nil {
		return err
	}
	b.energy = nil
	return nil
}

// OutputFlow 强制出流
func (b *NodeBase) OutputFlow(unit units.Unit) (float64, error) { return b.outFlow.Get(unit) }

// SetOutputFlow 设置强制出流
func (b *NodeBase) SetOutputFlow(value float64, unit units.Unit) error {
	return b.outFlow.Set(value, unit)
}

// InputEdges 流入管段
func (b *NodeBase) InputEdges() []Edge { return b.input }

// OutputEdges 流出管段
func (b *NodeBase) OutputEdges() []Edge { return b.output }

// AddInputEdge 追加流入管段
func (b *NodeBase) AddInputEdge(e Edge) { b.input = append(b.input, e) }

// AddOutputEdge 追加流出管段
func (b *NodeBase) AddOutputEdge(e Edge) { b.output = append(b.output, e) }

// InsertOutputEdge 在指定位置插入流出管段
func (b *NodeBase) InsertOutputEdge(i int, e Edge) {
	i = min(max(i, 0), len(b.output))
	b.output = slices.Insert(b.output, i, e)
}

// RemoveInputEdge 移除流入管段，返回原位置
func (b *NodeBase) RemoveInputEdge(e Edge) (int, bool) {
	i := slices.Index(b.input, e)
	if i < 0 {
		return -1, false
	}
	b.input = slices.Delete(b.input, i, i+1)
	return i, true
}

// RemoveOutputEdge 移除流出管段，返回原位置
func (b *NodeBase) RemoveOutputEdge(e Edge) (int, bool) {
	i := slices.Index(b.output, e)
	if i < 0 {
		return -1, false
	}
	b.output = slices.Delete(b.output, i, i+1)
	return i, true
}

// energyOf 读取能量缓存，失效时由高程和压头重新计算
func (b *NodeBase) energyOf(pressure func(units.Unit) (float64, error), unit units.Unit) (float64, error) {
	if b.energy == nil {
		elevation, err := b.elevation.Get(units.Meter)
		if err != nil {
			return 0, err
		}
		head, err := pressure(units.MH2O)
		if err != nil {
			return 0, err
		}
		energy, err := units.NewValue(units.Pressure, elevation+head, units.MH2O)
		if err != nil {
			return 0, err
		}
		b.energy = energy
	}
	return b.energy.Get(unit)
}

// EndNode 末端节点（水池边界），相对压力恒为0
type EndNode struct {
	NodeBase
}

// NewEndNode 创建末端节点
func NewEndNode() *EndNode { return &EndNode{NodeBase: newNodeBase()} }

// Type 节点类型
func (*EndNode) Type() NodeType { return EndNodeType }

// Pressure 压力恒为0
func (*EndNode) Pressure(unit units.Unit) (float64, error) {
	if !units.Pressure.Supports(unit) {
		return 0, units.New(units.Pressure).Set(0, unit)
	}
	return 0, nil
}

// Energy 能量等于高程
func (n *EndNode) Energy(unit units.Unit) (float64, error) {
	return n.energyOf(n.Pressure, unit)
}

// ConnectionNode 连接节点，压力为未知量
type ConnectionNode struct {
	NodeBase
	pressure *units.Value
}

// NewConnectionNode 创建连接节点
func NewConnectionNode() *ConnectionNode {
	return &ConnectionNode{NodeBase: newNodeBase(), pressure: units.New(units.Pressure)}
}

// Type 节点类型
func (*ConnectionNode) Type() NodeType { return ConnectionNodeType }

// Pressure 压力
func (n *ConnectionNode) Pressure(unit units.Unit) (float64, error) { return n.pressure.Get(unit) }

// SetPressure 设置压力
func (n *ConnectionNode) SetPressure(value float64, unit units.Unit) error {
	if err := n.pressure.Set(value, unit); err != nil {
		return err
	}
	n.energy = nil
	return nil
}

// Energy 能量
func (n *ConnectionNode) Energy(unit units.Unit) (float64, error) {
	return n.energyOf(n.Pressure, unit)
}

// SetEnergy 设置能量，已知高程时压力 = 能量 - 高程
func (n *ConnectionNode) SetEnergy(value float64, unit units.Unit) error {
	energy, err := units.NewValue(units.Pressure, value, unit)
	if err != nil {
		return err
	}
	n.energy = energy
	if !n.elevation.IsSet() {
		return nil
	}
	head, _ := energy.Get(units.MH2O)
	elevation, _ := n.elevation.Get(units.Meter)
	return n.pressure.Set(head-elevation, units.MH2O)
}

// InputNode 入口节点，网络中唯一的补水来源
type InputNode struct {
	ConnectionNode
}

// NewInputNode 创建入口节点
func NewInputNode() *InputNode {
	return &InputNode{ConnectionNode: *NewConnectionNode()}
}

// Type 节点类型
func (*InputNode) Type() NodeType { return InputNodeType }

// EductorOutlet 引射器出口
type EductorOutlet struct {
	ConnectionNode
}

// NewEductorOutlet 创建引射器出口
func NewEductorOutlet() *EductorOutlet {
	return &EductorOutlet{ConnectionNode: *NewConnectionNode()}
}

// Type 节点类型
func (*EductorOutlet) Type() NodeType { return EductorOutletType }

// EductorInlet 引射器入口
// 与出口配对后，入口压力变化按影响系数传递到出口
type EductorInlet struct {
	ConnectionNode
	outlet    *EductorOutlet
	influence float64
}

// NewEductorInlet 创建引射器入口
func NewEductorInlet() *EductorInlet {
	return &EductorInlet{ConnectionNode: *NewConnectionNode()}
}

// Type 节点类型
func (*EductorInlet) Type() NodeType { return EductorInletType }

// Pair 配对出口
func (n *EductorInlet) Pair(outlet *EductorOutlet, influence float64) {
	n.outlet, n.influence = outlet, influence
}

// Outlet 配对出口
func (n *EductorInlet) Outlet() *EductorOutlet { return n.outlet }

// SetPressure 设置压力并传递影响
func (n *EductorInlet) SetPressure(value float64, unit units.Unit) error {
	before, hadBefore := n.pressurePsi()
	if err := n.ConnectionNode.SetPressure(value, unit); err != nil {
		return err
	}
	return n.propagate(before, hadBefore)
}

// SetEnergy 设置能量并传递影响
func (n *EductorInlet) SetEnergy(value float64, unit units.Unit) error {
	before, hadBefore := n.pressurePsi()
	if err := n.ConnectionNode.SetEnergy(value, unit); err != nil {
		return err
	}
	return n.propagate(before, hadBefore)
}

func (n *EductorInlet) pressurePsi() (float64, bool) {
	p, err := n.pressure.Get(units.Psi)
	return p, err == nil
}

// propagate 出口压力 += 影响系数 × 入口压力变化
func (n *EductorInlet) propagate(before float64, hadBefore bool) error {
	if n.outlet == nil || n.influence == 0 || !hadBefore {
		return nil
	}
	after, ok := n.pressurePsi()
	if !ok {
		return nil
	}
	current, err := n.outlet.Pressure(units.Psi)
	if err != nil {
		return err
	}
	return n.outlet.SetPressure(current+n.influence*(after-before), units.Psi)
}
