package debug

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	*Record
}

func legend() charts.GlobalOpts {
	return charts.WithLegendOpts(opts.Legend{
		Type:   "scroll",
		Orient: "vertical",
		Right:  "10",
		Top:    "20",
		Bottom: "20",
	})
}

func theme() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Theme: types.ThemeWesteros,
	})
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		theme(),
		charts.WithTitleOpts(opts.Title{
			Title:    "管网结构",
			Subtitle: "节点与管段连接图，连线数值为流量(gpm)",
		}),
		legend(),
	)
	graph.SetSeriesOptions(
		charts.WithEmphasisOpts(opts.Emphasis{
			Label: &opts.Label{
				Show:     opts.Bool(true),
				Color:    "black",
				Position: "left",
			},
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Curveness: 0.3,
		}),
	)
	graphNodes := make([]opts.GraphNode, len(c.Nodes))
	for i, n := range c.Nodes {
		category := 0
		if c.isActive(n) {
			category = 1
		}
		graphNodes[i] = opts.GraphNode{
			Name:     n,
			Category: category,
			Tooltip:  &opts.Tooltip{Show: opts.Bool(true)},
		}
	}
	graphLinks := make([]opts.GraphLink, 0, len(c.Links))
	for i, l := range c.Links {
		if l[0] < 0 || l[1] < 0 {
			continue
		}
		graphLinks = append(graphLinks, opts.GraphLink{
			Source: c.Nodes[l[0]],
			Target: c.Nodes[l[1]],
			Value:  float32(c.Flows[i]),
		})
	}
	graph.AddSeries("管网", graphNodes, graphLinks,
		charts.WithGraphChartOpts(opts.GraphChart{
			Categories: []*opts.GraphCategory{
				{Name: "已知压力", ItemStyle: &opts.ItemStyle{Color: "#c71979b7"}},
				{Name: "未知压力", ItemStyle: &opts.ItemStyle{Color: "#1987c7b7"}},
			},
			Roam:               opts.Bool(true),
			Force:              &opts.GraphForce{Repulsion: 80},
			EdgeLabel:          &opts.EdgeLabel{Show: opts.Bool(true)},
			FocusNodeAdjacency: opts.Bool(true),
		}))

	lineE := newLine("未知量曲线", "各次迭代的节点能量(psi)，拆下喷嘴的节点为入口流量(gpm)")
	lineR := newLine("残差曲线", "各次迭代的流量不平衡绝对值之和(gpm)")
	lineE.SetXAxis(c.axis())
	lineR.SetXAxis(c.axis())
	for r, run := range c.Runs {
		prefix := ""
		if len(c.Runs) > 1 {
			prefix = fmt.Sprintf("#%d ", r+1)
		}
		for s, name := range run.Active {
			items := make([]opts.LineData, len(run.Values))
			for i, v := range run.Values {
				items[i] = opts.LineData{Value: v[s]}
			}
			lineE.AddSeries(prefix+name, items)
		}
		items := make([]opts.LineData, len(run.Residual))
		for i, v := range run.Residual {
			items[i] = opts.LineData{Value: v}
		}
		lineR.AddSeries(fmt.Sprintf("%s残差", prefix), items)
	}

	page := components.NewPage()
	page.AddCharts(
		graph,
		lineE,
		lineR,
	)
	return page.Render(w)
}

func newLine(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		theme(),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		legend(),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	return line
}

// axis 迭代序号，取最长的一次迭代过程
func (c *Charts) axis() []int {
	n := 0
	for _, run := range c.Runs {
		n = max(n, len(run.Residual))
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (c *Charts) isActive(name string) bool {
	for _, run := range c.Runs {
		if slices.Contains(run.Active, name) {
			return true
		}
	}
	return false
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(w); err != nil {
		slog.Error("渲染曲线失败", slog.Any("error", err))
	}
}
