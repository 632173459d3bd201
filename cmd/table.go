package main

import (
	"fmt"
	"strconv"

	"hydraulic"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newTable(numeric int, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= numeric:
				return numberStyle
			default:
				return cellStyle
			}
		})
}

func number(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

// kind 类型名称及代码，如 ConnectionNode(c)
func kind(name string, code byte) string { return fmt.Sprintf("%s(%c)", name, code) }

func label(name string, i int) string {
	if name != "" {
		return name
	}
	return strconv.Itoa(i)
}

// nodeTable 节点压力表
func nodeTable(r *hydraulic.Report) string {
	t := newTable(2, "节点", "类型", "高程(m)", "压力(psi)", "能量(psi)", "强制出流(gpm)")
	for i, n := range r.Nodes {
		t.Row(label(n.Name, i), kind(n.Type.String(), n.Type.Code()),
			number(n.Elevation), number(n.Pressure), number(n.Energy), number(n.OutputFlow))
	}
	return t.String()
}

// edgeTable 管段流量表
func edgeTable(r *hydraulic.Report) string {
	t := newTable(4, "管段", "类型", "上游", "下游", "流量(gpm)")
	for i, e := range r.Edges {
		t.Row(label(e.Name, i), kind(e.Type.String(), e.Type.Code()), strconv.Itoa(e.Input), strconv.Itoa(e.Output), number(e.Flow))
	}
	return t.String()
}
