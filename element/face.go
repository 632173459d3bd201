package element

import (
	"fmt"
	"log"

	"hydraulic/units"
)

// NodeType 节点类型标识
type NodeType uint8

// EdgeType 管段类型标识
type EdgeType uint8

// NodeConfig 节点类型配置
type NodeConfig struct {
	Code byte        // 类型代码（如 'c' 表示连接节点）
	Name string      // 类型名称
	New  func() Node // 创建实例
}

// EdgeConfig 管段类型配置
type EdgeConfig struct {
	Code byte        // 类型代码（如 'p' 表示管道）
	Name string      // 类型名称
	New  func() Edge // 创建实例
}

// NodeLitt 节点类型注册表
var NodeLitt = map[NodeType]*NodeConfig{}

// EdgeLitt 管段类型注册表
var EdgeLitt = map[EdgeType]*EdgeConfig{}

// AddNode 注册节点类型到全局节点类型表
// 参数t: 节点类型标识，必须是唯一的
// 参数config: 类型配置，Code 为 NewNode 使用的单字符代码
// 返回：注册成功的节点类型标识
// 注意：类型或代码重复注册会终止程序
func AddNode(t NodeType, config *NodeConfig) NodeType {
	if _, ok := NodeLitt[t]; ok {
		log.Fatalf("节点重复注册: %d", t)
	}
	for _, c := range NodeLitt {
		if c.Code == config.Code {
			log.Fatalf("节点代码重复注册: %c", config.Code)
		}
	}
	NodeLitt[t] = config
	return t
}

// AddEdge 注册管段类型
// 注意：类型或代码重复注册会终止程序
func AddEdge(t EdgeType, config *EdgeConfig) EdgeType {
	if _, ok := EdgeLitt[t]; ok {
		log.Fatalf("管段重复注册: %d", t)
	}
	for _, c := range EdgeLitt {
		if c.Code == config.Code {
			log.Fatalf("管段代码重复注册: %c", config.Code)
		}
	}
	EdgeLitt[t] = config
	return t
}

// NewNode 根据类型代码创建节点
// 参数code: 已注册的单字符代码，如 'c' 为 ConnectionNode
// 返回：新节点，代码未注册时返回 ErrUnknownCode
func NewNode(code byte) (Node, error) {
	for _, c := range NodeLitt {
		if c.Code == code {
			return c.New(), nil
		}
	}
	return nil, fmt.Errorf("%w: 节点 %q", ErrUnknownCode, code)
}

// NewEdge 根据类型代码创建管段
func NewEdge(code byte) (Edge, error) {
	for _, c := range EdgeLitt {
		if c.Code == code {
			return c.New(), nil
		}
	}
	return nil, fmt.Errorf("%w: 管段 %q", ErrUnknownCode, code)
}

// String 类型名称
func (t NodeType) String() string {
	if c, ok := NodeLitt[t]; ok {
		return c.Name
	}
	return fmt.Sprintf("NodeType(%d)", uint8(t))
}

// Code 类型代码
func (t NodeType) Code() byte {
	if c, ok := NodeLitt[t]; ok {
		return c.Code
	}
	return '?'
}

// String 类型名称
func (t EdgeType) String() string {
	if c, ok := EdgeLitt[t]; ok {
		return c.Name
	}
	return fmt.Sprintf("EdgeType(%d)", uint8(t))
}

// Code 类型代码
func (t EdgeType) Code() byte {
	if c, ok := EdgeLitt[t]; ok {
		return c.Code
	}
	return '?'
}

// Node 节点接口
// 所有节点都有高程、压力、能量、进出管段列表和强制出流
type Node interface {
	Type() NodeType                                   // 节点类型
	Name() string                                     // 节点名称
	SetName(name string)                              // 设置名称
	Elevation(unit units.Unit) (float64, error)       // 高程
	SetElevation(value float64, unit units.Unit) error // 设置高程，能量缓存失效
	Pressure(unit units.Unit) (float64, error)        // 压力
	Energy(unit units.Unit) (float64, error)          // 能量（高程+压头）
	OutputFlow(unit units.Unit) (float64, error)      // 强制出流
	SetOutputFlow(value float64, unit units.Unit) error
	InputEdges() []Edge  // 流入本节点的管段
	OutputEdges() []Edge // 流出本节点的管段
	Base() *NodeBase     // 底层数据
}

// Junction 压力未知的节点，由网络求解
type Junction interface {
	Node
	SetPressure(value float64, unit units.Unit) error // 设置压力，能量缓存失效
	SetEnergy(value float64, unit units.Unit) error   // 设置能量，已知高程时同步压力
}

// Edge 管段接口
// 流量由两端节点能量差计算，雅可比为流量对节点能量的偏导
type Edge interface {
	Type() EdgeType                                  // 管段类型
	Name() string                                    // 管段名称
	SetName(name string)                             // 设置名称
	InputNode() Node                                 // 上游节点
	OutputNode() Node                                // 下游节点
	SetInputNode(node Node) error                    // 设置上游节点，只能设置一次
	SetOutputNode(node Node) error                   // 设置下游节点，只能设置一次
	ClearInput()                                     // 清除上游节点
	ClearOutput()                                    // 清除下游节点
	Connects() bool                                  // 两端均已连接
	Flow(unit units.Unit) (float64, error)           // 缓存流量
	SetFlow(value float64, unit units.Unit) error    // 设置流量
	CalculateFlow() (float64, error)                 // 由节点能量重新计算流量(gpm)并缓存
	Jacobian(node Node) (float64, error)             // 流量对节点能量(psi)的偏导
	IsComplete() bool                                // 参数和连接是否完整
}
