package solver

import (
	"testing"

	"hydraulic/element"
	"hydraulic/network"
	"hydraulic/units"

	"github.com/stretchr/testify/require"
)

// link 管段 edge 从 up 流向 down
type link struct{ edge, up, down int }

// addNodes 按类型代码添加节点，压力未知节点初始压力为0
func addNodes(t testing.TB, net *network.Network, codes string, elevations []float64) {
	t.Helper()
	for i := range len(codes) {
		n, err := element.NewNode(codes[i])
		require.NoError(t, err)
		require.NoError(t, n.SetElevation(elevations[i], units.Meter))
		if j, ok := n.(element.Junction); ok {
			require.NoError(t, j.SetPressure(0, units.Psi))
		}
		_, err = net.AddNode(n)
		require.NoError(t, err)
	}
}

func addPipe(t testing.TB, net *network.Network, length, diameter float64) *element.Pipe {
	t.Helper()
	p := element.NewPipe()
	require.NoError(t, p.SetLength(length, units.Meter))
	require.NoError(t, p.SetInnerDiameter(diameter, units.Inch))
	require.NoError(t, p.SetC(100))
	_, err := net.AddEdge(p)
	require.NoError(t, err)
	return p
}

func addNozzle(t testing.TB, net *network.Network, k, required float64) *element.Nozzle {
	t.Helper()
	n := element.NewNozzle()
	require.NoError(t, n.SetFactor(k, units.GpmPsi))
	require.NoError(t, n.SetRequiredPressure(required, units.Psi))
	_, err := net.AddEdge(n)
	require.NoError(t, err)
	return n
}

func wire(t testing.TB, net *network.Network, links []link) {
	t.Helper()
	for _, l := range links {
		require.NoError(t, net.Link(l.edge, l.up, l.down))
	}
}

// fourReservoirs 四个水池经五根管道连接两个节点
func fourReservoirs(t testing.TB) *network.Network {
	t.Helper()
	net := network.New()
	addNodes(t, net, "eeeecc", []float64{100, 85, 65, 65, 70, 70})
	lengths := []float64{1000, 1200, 900, 500, 600}
	diameters := []float64{10.75, 7.981, 7.981, 6.065, 6.065}
	for i := range lengths {
		addPipe(t, net, lengths[i], diameters[i])
	}
	wire(t, net, []link{{2, 4, 5}, {1, 1, 4}, {0, 0, 4}, {3, 5, 2}, {4, 5, 3}})
	return net
}

// reservoirNozzles 三个水池供给三个喷嘴
func reservoirNozzles(t testing.TB) *network.Network {
	t.Helper()
	net := network.New()
	addNodes(t, net, "eeccceeec", []float64{30, 35, 25, 0, 0, 0, 0, 0, 0})
	lengths := []float64{100, 150, 20, 2, 2}
	diameters := []float64{1.939, 1.939, 1.939, .957, .957}
	for i := range lengths {
		addPipe(t, net, lengths[i], diameters[i])
	}
	for range 3 {
		addNozzle(t, net, 2, 0)
	}
	wire(t, net, []link{
		{0, 0, 2}, {1, 1, 2}, {2, 2, 3}, {5, 3, 5},
		{3, 3, 4}, {4, 4, 8}, {6, 4, 6}, {7, 8, 7},
	})
	return net
}

// eductorNozzles 水池经引射器供给两个喷嘴
func eductorNozzles(t testing.TB) (*network.Network, *element.Eductor) {
	t.Helper()
	net := network.New()
	addNodes(t, net, "enocece", []float64{20, 0, 0, 0, 0, 0, 0})
	ansi := func(nominal, length float64) {
		p, err := element.NewANSIPipe(nominal, units.Inch, element.Schedule80)
		require.NoError(t, err)
		require.NoError(t, p.SetLength(length, units.Meter))
		_, err = net.AddEdge(p)
		require.NoError(t, err)
	}
	ansi(2, 30)
	eductor := element.NewEductor()
	require.NoError(t, eductor.SetFactor(7, units.GpmPsi))
	require.NoError(t, eductor.SetConcentration(0.03))
	_, err := net.AddEdge(eductor)
	require.NoError(t, err)
	ansi(1, 1)
	addNozzle(t, net, 3.2, 15)
	ansi(1, 1)
	addNozzle(t, net, 3.2, 15)
	wire(t, net, []link{{0, 0, 1}, {1, 1, 2}, {2, 2, 3}, {3, 3, 4}, {4, 3, 5}, {5, 5, 6}})
	return net, eductor
}

// remoteNozzles 入口节点连接若干喷嘴，节点高程均为10 m
func remoteNozzles(t testing.TB, factors, required []float64) *network.Network {
	t.Helper()
	net := network.New()
	addNodes(t, net, "i", []float64{10})
	for i := range factors {
		addNodes(t, net, "e", []float64{10})
		addNozzle(t, net, factors[i], required[i])
		wire(t, net, []link{{i, 0, i + 1}})
	}
	return net
}

func flows(t testing.TB, net *network.Network) []float64 {
	t.Helper()
	out := make([]float64, len(net.Edges()))
	for i, e := range net.Edges() {
		q, err := e.Flow(units.Gpm)
		require.NoError(t, err)
		out[i] = q
	}
	return out
}

func nodeValues(t testing.TB, net *network.Network, read func(element.Node) (float64, error)) []float64 {
	t.Helper()
	out := make([]float64, len(net.Nodes()))
	for i, n := range net.Nodes() {
		v, err := read(n)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func pressurePsi(n element.Node) (float64, error) { return n.Pressure(units.Psi) }

func energyPsi(n element.Node) (float64, error) { return n.Energy(units.Psi) }
