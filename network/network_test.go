package network

import (
	"testing"

	"hydraulic/element"
	"hydraulic/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoNozzles 入口节点经两根喷嘴流向两个末端节点
func twoNozzles(t *testing.T) (*Network, *element.InputNode, []*element.Nozzle) {
	t.Helper()
	net := New()
	input := element.NewInputNode()
	require.NoError(t, input.SetElevation(0, units.Meter))
	require.NoError(t, input.SetPressure(0, units.Psi))
	_, err := net.AddNode(input)
	require.NoError(t, err)

	var nozzles []*element.Nozzle
	for i := range 2 {
		end := element.NewEndNode()
		require.NoError(t, end.SetElevation(0, units.Meter))
		_, err := net.AddNode(end)
		require.NoError(t, err)

		n := element.NewNozzle()
		require.NoError(t, n.SetFactor(1, units.GpmPsi))
		require.NoError(t, n.SetRequiredPressure(36, units.Psi))
		idx, err := net.AddEdge(n)
		require.NoError(t, err)
		require.NoError(t, net.Link(idx, 0, i+1))
		nozzles = append(nozzles, n)
	}
	return net, input, nozzles
}

// TestAddNode 重复添加和第二个入口节点
func TestAddNode(t *testing.T) {
	net := New()
	n := element.NewConnectionNode()
	i, err := net.AddNode(n)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = net.AddNode(n)
	assert.ErrorIs(t, err, ErrDuplicateNode)
	_, err = net.AddNode(nil)
	assert.ErrorIs(t, err, ErrNilElement)

	_, err = net.InputIndex()
	assert.ErrorIs(t, err, ErrNoInput)
	_, err = net.AddNode(element.NewEndNode())
	require.NoError(t, err)
	_, err = net.AddNode(element.NewInputNode())
	require.NoError(t, err)
	_, err = net.AddNode(element.NewInputNode())
	assert.ErrorIs(t, err, ErrSecondInput)
	assert.Len(t, net.Nodes(), 3)

	idx, err := net.InputIndex()
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, []int{0, 2}, net.ActiveNodes())
}

// TestAddEdge 重复添加管段
func TestAddEdge(t *testing.T) {
	net := New()
	p := element.NewPipe()
	_, err := net.AddEdge(p)
	require.NoError(t, err)
	_, err = net.AddEdge(p)
	assert.ErrorIs(t, err, ErrDuplicateEdge)

	_, err = net.EdgeAt(1)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = net.NodeAt(-1)
	assert.ErrorIs(t, err, ErrIndex)
}

// TestConnect 连接与断开
func TestConnect(t *testing.T) {
	net := New()
	a, b, c := element.NewConnectionNode(), element.NewConnectionNode(), element.NewConnectionNode()
	for _, n := range []element.Node{a, b, c} {
		_, err := net.AddNode(n)
		require.NoError(t, err)
	}
	p := element.NewPipe()
	_, err := net.AddEdge(p)
	require.NoError(t, err)

	require.NoError(t, net.ConnectDownstream(0, 0))
	require.NoError(t, net.ConnectUpstream(1, 0))
	assert.Same(t, a, p.InputNode())
	assert.Same(t, b, p.OutputNode())
	assert.Equal(t, []element.Edge{p}, a.OutputEdges())
	assert.Equal(t, []element.Edge{p}, b.InputEdges())

	// 已连接的端点不能重复设置，且节点列表不变
	assert.ErrorIs(t, net.ConnectUpstream(2, 0), element.ErrConnected)
	assert.Empty(t, c.InputEdges())

	assert.ErrorIs(t, net.Separate(2, 0), ErrNotEndpoint)
	require.NoError(t, net.Separate(1, 0))
	assert.Nil(t, p.OutputNode())
	assert.Empty(t, b.InputEdges())
	require.NoError(t, net.Separate(0, 0))
	assert.False(t, p.Connects())
	assert.Empty(t, a.OutputEdges())
}

// TestLinkRollback 下游连接失败时撤销上游连接
func TestLinkRollback(t *testing.T) {
	net := New()
	in, out := element.NewConnectionNode(), element.NewConnectionNode()
	_, _ = net.AddNode(in)
	_, _ = net.AddNode(out)
	nozzle := element.NewNozzle()
	_, _ = net.AddEdge(nozzle)

	assert.ErrorIs(t, net.Link(0, 0, 1), element.ErrNodeType)
	assert.Nil(t, nozzle.InputNode())
	assert.Empty(t, in.OutputEdges())
}

// TestNames 名称唯一与查找
func TestNames(t *testing.T) {
	net := New()
	for range 3 {
		_, err := net.AddNode(element.NewConnectionNode())
		require.NoError(t, err)
		_, err = net.AddEdge(element.NewPipe())
		require.NoError(t, err)
	}
	require.NoError(t, net.SetNodeName(1, "junction"))
	require.NoError(t, net.SetNodeName(1, "junction"))
	assert.ErrorIs(t, net.SetNodeName(2, "junction"), ErrNameTaken)

	i, err := net.NodeIndexByName("junction")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	_, err = net.NodeIndexByName("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, net.SetEdgeName(2, "main"))
	assert.ErrorIs(t, net.SetEdgeName(0, "main"), ErrNameTaken)
	i, err = net.EdgeIndexByName("main")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	// 空名称不冲突
	require.NoError(t, net.SetNodeName(0, ""))
	require.NoError(t, net.SetNodeName(2, ""))
	assert.ErrorIs(t, net.SetEdgeName(9, "x"), ErrIndex)

	// 添加前已命名的节点和管段同样检查
	node := element.NewConnectionNode()
	node.SetName("junction")
	_, err = net.AddNode(node)
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Len(t, net.Nodes(), 3)

	pipe := element.NewPipe()
	pipe.SetName("main")
	_, err = net.AddEdge(pipe)
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Len(t, net.Edges(), 3)

	pipe.SetName("branch")
	i, err = net.AddEdge(pipe)
	require.NoError(t, err)
	assert.Equal(t, 3, i)
}

// TestHoldNozzle 拆下喷嘴时固定节点出流和压力
func TestHoldNozzle(t *testing.T) {
	net, input, nozzles := twoNozzles(t)
	before := append([]element.Edge(nil), net.Edges()...)

	require.NoError(t, net.HoldNozzle(0))
	assert.Len(t, net.Edges(), 1)
	assert.Same(t, nozzles[1], net.Edges()[0])
	assert.Nil(t, nozzles[0].InputNode())
	assert.Equal(t, []element.Edge{nozzles[1]}, input.OutputEdges())

	flow, err := input.OutputFlow(units.Gpm)
	require.NoError(t, err)
	assert.InDelta(t, 6, flow, 1e-12)
	p, err := input.Pressure(units.Psi)
	require.NoError(t, err)
	assert.InDelta(t, 36, p, 1e-12)

	edgeIdx, nodeIdx, ok := net.Held()
	assert.True(t, ok)
	assert.Equal(t, 0, edgeIdx)
	assert.Equal(t, 0, nodeIdx)
	assert.Same(t, nozzles[0], net.HeldNozzle())
	assert.ErrorIs(t, net.HoldNozzle(0), ErrHeld)

	require.NoError(t, net.ReinsertNozzle())
	assert.Equal(t, before, net.Edges())
	assert.Equal(t, before, input.OutputEdges())
	assert.Same(t, input, nozzles[0].InputNode())
	flow, err = input.OutputFlow(units.Gpm)
	require.NoError(t, err)
	assert.Equal(t, 0.0, flow)

	assert.ErrorIs(t, net.ReinsertNozzle(), ErrNotHeld)
	_, _, ok = net.Held()
	assert.False(t, ok)
}

// TestHoldErrors 只能拆下上游为压力未知节点的喷嘴
func TestHoldErrors(t *testing.T) {
	net, _, _ := twoNozzles(t)
	pipe := element.NewPipe()
	idx, err := net.AddEdge(pipe)
	require.NoError(t, err)
	assert.ErrorIs(t, net.HoldNozzle(idx), ErrNotNozzle)
	assert.ErrorIs(t, net.HoldNozzle(idx+1), ErrIndex)

	loose := element.NewNozzle()
	idx, err = net.AddEdge(loose)
	require.NoError(t, err)
	assert.ErrorIs(t, net.HoldNozzle(idx), ErrNotJunction)
	assert.Equal(t, []int{0, 1, 3}, net.Nozzles())
}

// TestIncomplete 参数或连接缺失的管段
func TestIncomplete(t *testing.T) {
	net, _, nozzles := twoNozzles(t)
	assert.Empty(t, net.Incomplete())

	_, err := net.AddEdge(element.NewNozzle())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, net.Incomplete())
	assert.True(t, nozzles[0].IsComplete())
}
