package hydraulic

import (
	"errors"
	"fmt"

	"hydraulic/element"
	"hydraulic/units"
)

// NodeReport 节点结果
type NodeReport struct {
	Name       string
	Type       element.NodeType
	Elevation  float64 // m
	Pressure   float64 // psi
	Energy     float64 // psi
	OutputFlow float64 // gpm
}

// EdgeReport 管段结果
type EdgeReport struct {
	Name   string
	Type   element.EdgeType
	Input  int     // 上游节点索引
	Output int     // 下游节点索引
	Flow   float64 // gpm
}

// Report 求解结果
type Report struct {
	Nodes []NodeReport
	Edges []EdgeReport
}

// Report 读取当前节点压力与管段流量
func (h *Hydraulic) Report() (*Report, error) {
	nodes, edges := h.Nodes(), h.Edges()
	r := &Report{
		Nodes: make([]NodeReport, len(nodes)),
		Edges: make([]EdgeReport, len(edges)),
	}
	for i, n := range nodes {
		nr := NodeReport{Name: n.Name(), Type: n.Type()}
		var err error
		if nr.Elevation, err = n.Elevation(units.Meter); err != nil {
			return nil, fmt.Errorf("节点 %d 高程: %w", i, err)
		}
		if nr.Pressure, err = n.Pressure(units.Psi); err != nil {
			return nil, fmt.Errorf("节点 %d 压力: %w", i, err)
		}
		if nr.Energy, err = n.Energy(units.Psi); err != nil {
			return nil, fmt.Errorf("节点 %d 能量: %w", i, err)
		}
		if nr.OutputFlow, err = n.OutputFlow(units.Gpm); err != nil {
			return nil, fmt.Errorf("节点 %d 强制出流: %w", i, err)
		}
		r.Nodes[i] = nr
	}
	for i, e := range edges {
		q, err := e.Flow(units.Gpm)
		if errors.Is(err, units.ErrNotSet) {
			q, err = e.CalculateFlow()
		}
		if err != nil {
			return nil, fmt.Errorf("管段 %d 流量: %w", i, err)
		}
		r.Edges[i] = EdgeReport{
			Name:   e.Name(),
			Type:   e.Type(),
			Input:  h.NodeIndex(e.InputNode()),
			Output: h.NodeIndex(e.OutputNode()),
			Flow:   q,
		}
	}
	return r, nil
}
