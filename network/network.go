package network

import (
	"fmt"
	"math"
	"slices"

	"hydraulic/element"
	"hydraulic/units"
)

// Network 管网
// 节点与管段按添加顺序保存，对外以索引访问
type Network struct {
	nodes []element.Node
	edges []element.Edge
	held  *hold
}

// hold 拆下的喷嘴
type hold struct {
	nozzle   *element.Nozzle
	node     element.Junction
	edgeIdx  int // 喷嘴在管段列表中的原位置
	nodeIdx  int // 被拆下节点的索引
	position int // 喷嘴在节点流出列表中的原位置
}

// New 创建空管网
func New() *Network {
	return &Network{}
}

// Nodes 节点列表
func (net *Network) Nodes() []element.Node { return net.nodes }

// Edges 管段列表
func (net *Network) Edges() []element.Edge { return net.edges }

// AddNode 添加节点，返回索引
func (net *Network) AddNode(node element.Node) (int, error) {
	if node == nil {
		return -1, ErrNilElement
	}
	if slices.Contains(net.nodes, node) {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateNode, node.Name())
	}
	if node.Type() == element.InputNodeType {
		if i, err := net.InputIndex(); err == nil {
			return -1, fmt.Errorf("%w: 已存在索引 %d", ErrSecondInput, i)
		}
	}
	if name := node.Name(); name != "" {
		if j, err := net.NodeIndexByName(name); err == nil {
			return -1, fmt.Errorf("%w: 节点 %q 已属于 %d", ErrNameTaken, name, j)
		}
	}
	net.nodes = append(net.nodes, node)
	return len(net.nodes) - 1, nil
}

// AddEdge 添加管段，返回索引
func (net *Network) AddEdge(edge element.Edge) (int, error) {
	if edge == nil {
		return -1, ErrNilElement
	}
	if slices.Contains(net.edges, edge) {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateEdge, edge.Name())
	}
	if name := edge.Name(); name != "" {
		if j, err := net.EdgeIndexByName(name); err == nil {
			return -1, fmt.Errorf("%w: 管段 %q 已属于 %d", ErrNameTaken, name, j)
		}
	}
	net.edges = append(net.edges, edge)
	return len(net.edges) - 1, nil
}

// NodeAt 按索引取节点
func (net *Network) NodeAt(i int) (element.Node, error) {
	if i < 0 || i >= len(net.nodes) {
		return nil, fmt.Errorf("%w: 节点 %d/%d", ErrIndex, i, len(net.nodes))
	}
	return net.nodes[i], nil
}

// EdgeAt 按索引取管段
func (net *Network) EdgeAt(i int) (element.Edge, error) {
	if i < 0 || i >= len(net.edges) {
		return nil, fmt.Errorf("%w: 管段 %d/%d", ErrIndex, i, len(net.edges))
	}
	return net.edges[i], nil
}

// NodeIndex 节点在网络中的索引
func (net *Network) NodeIndex(node element.Node) int {
	return slices.Index(net.nodes, node)
}

// EdgeIndex 管段在网络中的索引
func (net *Network) EdgeIndex(edge element.Edge) int {
	return slices.Index(net.edges, edge)
}

func (net *Network) pair(nodeIdx, edgeIdx int) (element.Node, element.Edge, error) {
	node, err := net.NodeAt(nodeIdx)
	if err != nil {
		return nil, nil, err
	}
	edge, err := net.EdgeAt(edgeIdx)
	if err != nil {
		return nil, nil, err
	}
	return node, edge, nil
}

// ConnectUpstream 节点作为管段下游：管段流入该节点
func (net *Network) ConnectUpstream(nodeIdx, edgeIdx int) error {
	node, edge, err := net.pair(nodeIdx, edgeIdx)
	if err != nil {
		return err
	}
	if err := edge.SetOutputNode(node); err != nil {
		return fmt.Errorf("节点 %d 连接管段 %d: %w", nodeIdx, edgeIdx, err)
	}
	node.Base().AddInputEdge(edge)
	return nil
}

// ConnectDownstream 节点作为管段上游：管段从该节点流出
func (net *Network) ConnectDownstream(nodeIdx, edgeIdx int) error {
	node, edge, err := net.pair(nodeIdx, edgeIdx)
	if err != nil {
		return err
	}
	if err := edge.SetInputNode(node); err != nil {
		return fmt.Errorf("节点 %d 连接管段 %d: %w", nodeIdx, edgeIdx, err)
	}
	node.Base().AddOutputEdge(edge)
	return nil
}

// Link 连接管段的上下游节点
// 参数:
//
//	edgeIdx - 管段索引
//	upIdx - 上游节点索引，管段从该节点流出
//	downIdx - 下游节点索引，管段流入该节点
//
// 注意: 下游连接失败时撤销已完成的上游连接，管网保持调用前状态
func (net *Network) Link(edgeIdx, upIdx, downIdx int) error {
	if _, err := net.NodeAt(downIdx); err != nil {
		return err
	}
	if err := net.ConnectDownstream(upIdx, edgeIdx); err != nil {
		return err
	}
	if err := net.ConnectUpstream(downIdx, edgeIdx); err != nil {
		_ = net.Separate(upIdx, edgeIdx)
		return err
	}
	return nil
}

// Separate 断开节点与管段
func (net *Network) Separate(nodeIdx, edgeIdx int) error {
	node, edge, err := net.pair(nodeIdx, edgeIdx)
	if err != nil {
		return err
	}
	isInput, isOutput := edge.InputNode() == node, edge.OutputNode() == node
	if !isInput && !isOutput {
		return fmt.Errorf("%w: 节点 %d 管段 %d", ErrNotEndpoint, nodeIdx, edgeIdx)
	}
	if isInput {
		node.Base().RemoveOutputEdge(edge)
		edge.ClearInput()
	}
	if isOutput {
		node.Base().RemoveInputEdge(edge)
		edge.ClearOutput()
	}
	return nil
}

// NodeIndexByName 按名称查找节点，返回第一个匹配
func (net *Network) NodeIndexByName(name string) (int, error) {
	for i, n := range net.nodes {
		if n.Name() == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: 节点 %q", ErrNotFound, name)
}

// EdgeIndexByName 按名称查找管段，返回第一个匹配
func (net *Network) EdgeIndexByName(name string) (int, error) {
	for i, e := range net.edges {
		if e.Name() == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: 管段 %q", ErrNotFound, name)
}

// SetNodeName 设置节点名称，名称在节点中唯一
func (net *Network) SetNodeName(i int, name string) error {
	node, err := net.NodeAt(i)
	if err != nil {
		return err
	}
	if name != "" {
		if j, err := net.NodeIndexByName(name); err == nil && j != i {
			return fmt.Errorf("%w: 节点 %q 已属于 %d", ErrNameTaken, name, j)
		}
	}
	node.SetName(name)
	return nil
}

// SetEdgeName 设置管段名称，名称在管段中唯一
func (net *Network) SetEdgeName(i int, name string) error {
	edge, err := net.EdgeAt(i)
	if err != nil {
		return err
	}
	if name != "" {
		if j, err := net.EdgeIndexByName(name); err == nil && j != i {
			return fmt.Errorf("%w: 管段 %q 已属于 %d", ErrNameTaken, name, j)
		}
	}
	edge.SetName(name)
	return nil
}

// ActiveNodes 压力未知节点的索引
func (net *Network) ActiveNodes() []int {
	var active []int
	for i, n := range net.nodes {
		if _, ok := n.(element.Junction); ok {
			active = append(active, i)
		}
	}
	return active
}

// Incomplete 参数或连接不完整的管段索引
// 求解器不检查完整性，调用方需要时在求解前检查
func (net *Network) Incomplete() []int {
	var list []int
	for i, e := range net.edges {
		if !e.IsComplete() {
			list = append(list, i)
		}
	}
	return list
}

// InputIndex 入口节点索引
func (net *Network) InputIndex() (int, error) {
	for i, n := range net.nodes {
		if n.Type() == element.InputNodeType {
			return i, nil
		}
	}
	return -1, ErrNoInput
}

// Nozzles 喷嘴索引
func (net *Network) Nozzles() []int {
	var list []int
	for i, e := range net.edges {
		if e.Type() == element.NozzleType {
			list = append(list, i)
		}
	}
	return list
}

// HoldNozzle 拆下喷嘴
// 参数:
//
//	edgeIdx - 喷嘴在管段列表中的索引，上游必须是压力未知节点
//
// 功能:
//  1. 上游节点强制出流固定为 k·sqrt(要求压力)
//  2. 喷嘴从节点流出列表和管段列表中移出，记录原位置
//  3. 上游节点压力固定为要求压力
//
// 注意: 同一时刻只能拆下一个喷嘴，装回前再次拆下返回 ErrHeld；
// 拆下期间管段索引会前移，求解结束后必须调用 ReinsertNozzle
func (net *Network) HoldNozzle(edgeIdx int) error {
	if net.held != nil {
		return fmt.Errorf("%w: 管段 %d", ErrHeld, net.held.edgeIdx)
	}
	edge, err := net.EdgeAt(edgeIdx)
	if err != nil {
		return err
	}
	nozzle, ok := edge.(*element.Nozzle)
	if !ok {
		return fmt.Errorf("%w: 管段 %d 为 %s", ErrNotNozzle, edgeIdx, edge.Type())
	}
	node, ok := nozzle.InputNode().(element.Junction)
	if !ok {
		return fmt.Errorf("%w: 管段 %d", ErrNotJunction, edgeIdx)
	}
	k, err := nozzle.Factor(units.GpmPsi)
	if err != nil {
		return fmt.Errorf("%w: 管段 %d 喷嘴系数", element.ErrIncomplete, edgeIdx)
	}
	required, err := nozzle.RequiredPressure(units.Psi)
	if err != nil {
		return fmt.Errorf("%w: 管段 %d 要求压力", element.ErrIncomplete, edgeIdx)
	}

	if err := node.SetOutputFlow(k*math.Sqrt(required), units.Gpm); err != nil {
		return err
	}
	position, _ := node.Base().RemoveOutputEdge(nozzle)
	nozzle.ClearInput()
	net.edges = slices.Delete(net.edges, edgeIdx, edgeIdx+1)
	if err := node.SetPressure(required, units.Psi); err != nil {
		return err
	}
	net.held = &hold{
		nozzle:   nozzle,
		node:     node,
		edgeIdx:  edgeIdx,
		nodeIdx:  net.NodeIndex(node),
		position: position,
	}
	return nil
}

// Held 拆下的喷嘴原索引及其上游节点索引
func (net *Network) Held() (edgeIdx, nodeIdx int, ok bool) {
	if net.held == nil {
		return -1, -1, false
	}
	return net.held.edgeIdx, net.held.nodeIdx, true
}

// HeldNozzle 拆下的喷嘴
func (net *Network) HeldNozzle() *element.Nozzle {
	if net.held == nil {
		return nil
	}
	return net.held.nozzle
}

// ReinsertNozzle 装回喷嘴，恢复管段顺序和连接
// 管段列表与节点流出列表都回到拆下前的位置，节点强制出流清零
// 没有拆下的喷嘴时返回 ErrNotHeld
func (net *Network) ReinsertNozzle() error {
	h := net.held
	if h == nil {
		return ErrNotHeld
	}
	if err := h.nozzle.SetInputNode(h.node); err != nil {
		return err
	}
	idx := min(h.edgeIdx, len(net.edges))
	net.edges = slices.Insert(net.edges, idx, element.Edge(h.nozzle))
	h.node.Base().InsertOutputEdge(h.position, h.nozzle)
	net.held = nil
	return h.node.SetOutputFlow(0, units.Gpm)
}
