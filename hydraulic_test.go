package hydraulic

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hydraulic/config"
	"hydraulic/element"
	"hydraulic/metrics"
	"hydraulic/network"
	"hydraulic/solver"
	"hydraulic/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *config.Config {
	cfg := config.Default()
	cfg.Solver.Seed = &seed
	return cfg
}

func TestFourReservoirs(t *testing.T) {
	h, err := FourReservoirs(seeded(1), io.Discard)
	require.NoError(t, err)
	h.Metrics = metrics.NewRegistry()

	rec, err := h.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.Runs, 1)

	report, err := h.Report()
	require.NoError(t, err)
	require.Len(t, report.Edges, 5)
	for i, q := range []float64{1135.2443, -383.5847, 751.6596, 394.3143, 357.3453} {
		assert.InDelta(t, q, report.Edges[i].Flow, 5e-4, "管段 %d", i)
	}
	assert.InDelta(t, 30.016, report.Nodes[4].Pressure, 1e-3)
	assert.InDelta(t, 7.383, report.Nodes[5].Pressure, 1e-3)
	assert.Equal(t, element.ConnectionNodeType, report.Nodes[4].Type)
	assert.Equal(t, 4, report.Edges[0].Output)

	var buf bytes.Buffer
	require.NoError(t, h.Metrics.WriteText(&buf))
	assert.Contains(t, buf.String(), `hydraulic_solves_total{solver="newton",status="converged"} 1`)
}

func TestReservoirNozzles(t *testing.T) {
	h, err := ReservoirNozzles(seeded(2), io.Discard)
	require.NoError(t, err)
	_, err = h.Solve(context.Background())
	require.NoError(t, err)

	report, err := h.Report()
	require.NoError(t, err)
	for i, q := range []float64{9.8088, 27.1569, 36.9657, 24.3163, 12.0977, 12.6494, 12.2186, 12.0977} {
		assert.InDelta(t, q, report.Edges[i].Flow, 5e-4, "管段 %d", i)
	}
	assert.Equal(t, element.NozzleType, report.Edges[5].Type)
}

func TestRemoteNozzles(t *testing.T) {
	h, err := RemoteNozzles(seeded(3), io.Discard, []float64{2, 1}, []float64{25, 36})
	require.NoError(t, err)
	rec, err := h.SolveRemote(context.Background())
	require.NoError(t, err)
	assert.Len(t, rec.Runs, 2)

	report, err := h.Report()
	require.NoError(t, err)
	assert.InDelta(t, 12, report.Edges[0].Flow, 1e-9)
	assert.InDelta(t, 6, report.Edges[1].Flow, 1e-9)
	assert.InDelta(t, -18, report.Nodes[0].OutputFlow, 1e-9)
	assert.InDelta(t, 36, report.Nodes[0].Pressure, 1e-9)

	_, err = RemoteNozzles(nil, io.Discard, []float64{1}, nil)
	assert.Error(t, err)
}

func TestEductorNozzles(t *testing.T) {
	h, err := EductorNozzles(seeded(4), io.Discard)
	require.NoError(t, err)
	_, err = h.Solve(context.Background())
	require.NoError(t, err)

	report, err := h.Report()
	require.NoError(t, err)
	assert.Equal(t, element.EductorType, report.Edges[1].Type)
	assert.InDelta(t, 23.563, report.Edges[1].Flow, 1e-2)
	assert.InDelta(t, report.Edges[1].Flow*1.03, report.Edges[2].Flow, 1e-3)
	assert.InDelta(t, report.Edges[2].Flow, report.Edges[3].Flow+report.Edges[5].Flow, 1e-3)
}

// TestBounded 有界求解达到上限
func TestBounded(t *testing.T) {
	cfg, err := config.Parse([]byte("solver:\n  bounded: true\n  max_iterations: 1\n  seed: 1\n"))
	require.NoError(t, err)
	h, err := FourReservoirs(cfg, io.Discard)
	require.NoError(t, err)
	rec, err := h.Solve(context.Background())
	require.ErrorIs(t, err, solver.ErrNotConverged)
	assert.Equal(t, []int{1}, rec.Iterations())
}

// TestDebugOutput 按配置输出调试文件
func TestDebugOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := seeded(5)
	cfg.Debug = config.Debug{
		Record: filepath.Join(dir, "record.json"),
		Chart:  filepath.Join(dir, "chart.html"),
		Plot:   filepath.Join(dir, "plot.png"),
	}
	var logs bytes.Buffer
	cfg.Log.Level = "debug"
	h, err := FourReservoirs(cfg, &logs)
	require.NoError(t, err)
	_, err = h.Solve(context.Background())
	require.NoError(t, err)

	for _, path := range []string{cfg.Debug.Record, cfg.Debug.Chart, cfg.Debug.Plot} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
	assert.Contains(t, logs.String(), "求解完成")
	assert.Equal(t, 3, strings.Count(logs.String(), "输出调试文件"))

	cfg.Debug.Plot = filepath.Join(dir, "missing", "plot.png")
	_, err = h.Solve(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAddNodes(t *testing.T) {
	h := New(nil, io.Discard)
	_, err := h.AddNodes("ec", []float64{1}, units.Meter)
	assert.Error(t, err)

	first, err := h.AddNodes("ec", []float64{1, 2}, units.Meter)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	first, err = h.AddNodes("i", []float64{3}, units.Foot)
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	_, err = h.AddNodes("i", []float64{0}, units.Meter)
	assert.ErrorIs(t, err, network.ErrSecondInput)
	_, err = h.AddNodes("x", []float64{0}, units.Meter)
	assert.ErrorIs(t, err, element.ErrUnknownCode)
	assert.Len(t, h.Nodes(), 3)

	// 批量中任一节点不能加入时整批不加入
	_, err = h.AddNodes("ci", []float64{0, 0}, units.Meter)
	assert.ErrorIs(t, err, network.ErrSecondInput)
	assert.Len(t, h.Nodes(), 3)
	_, err = New(nil, io.Discard).AddNodes("cii", []float64{0, 0, 0}, units.Meter)
	assert.ErrorIs(t, err, network.ErrSecondInput)

	p, err := h.Nodes()[1].Pressure(units.Psi)
	require.NoError(t, err)
	assert.Zero(t, p)
}

func TestConnect(t *testing.T) {
	h := New(nil, io.Discard)
	_, err := h.AddNodes("ec", []float64{10, 0}, units.Meter)
	require.NoError(t, err)
	_, err = h.AddPipe(100, units.Meter, 2, units.Inch, 120)
	require.NoError(t, err)
	_, err = h.AddPipe(100, units.Meter, 2, units.Inch, 0)
	assert.ErrorIs(t, err, element.ErrCoefficient)
	_, err = h.AddANSIPipe(4, units.Inch, element.ScheduleStd, 10, units.Meter)
	assert.ErrorIs(t, err, element.ErrSchedule)
	_, err = h.AddEductor(1, 1)
	assert.ErrorIs(t, err, element.ErrConcentration)

	require.NoError(t, h.Connect([3]int{0, 0, 1}))
	assert.ErrorIs(t, h.Connect([3]int{3, 0, 1}), network.ErrIndex)
}
