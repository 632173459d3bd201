package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"hydraulic/element"
	"hydraulic/network"
	"hydraulic/units"
)

// Run 一次 Newton 迭代过程
type Run struct {
	Held     int         // 拆下喷嘴的节点索引，-1 表示无
	Active   []string    // 未知量对应的节点
	Values   [][]float64 // 每次迭代的未知量
	Residual []float64   // 每次迭代的残差
}

// Record 记录求解历史
type Record struct {
	Nodes []string  // 节点列表
	Edges []string  // 管段列表
	Links [][2]int  // 管段连接的上下游节点索引，未连接为 -1
	Flows []float64 // 求解结束时的管段流量(gpm)
	Runs  []Run     // 远端喷嘴求解每拆一次喷嘴记录一次
	Error string    // 求解错误

	net *network.Network
}

// Start 开始记录一次迭代过程
func (r *Record) Start(net *network.Network, active []int) {
	r.net = net
	run := Run{Held: -1, Active: make([]string, len(active))}
	if _, idx, ok := net.Held(); ok {
		run.Held = idx
	}
	nodes := net.Nodes()
	for i, idx := range active {
		run.Active[i] = nodeName(nodes[idx], idx)
	}
	r.Runs = append(r.Runs, run)
}

// Iteration 记录数据
func (r *Record) Iteration(_ int, values []float64, residual float64) {
	if len(r.Runs) == 0 {
		return
	}
	run := &r.Runs[len(r.Runs)-1]
	run.Values = append(run.Values, append([]float64{}, values...))
	run.Residual = append(run.Residual, residual)
}

// Finish 记录管网结构与最终流量
func (r *Record) Finish(err error) {
	r.Error = ""
	if err != nil {
		r.Error = err.Error()
	}
	if r.net == nil {
		return
	}
	nodes, edges := r.net.Nodes(), r.net.Edges()
	r.Nodes = make([]string, len(nodes))
	for i, n := range nodes {
		r.Nodes[i] = nodeName(n, i)
	}
	r.Edges = make([]string, len(edges))
	r.Links = make([][2]int, len(edges))
	r.Flows = make([]float64, len(edges))
	for i, e := range edges {
		r.Edges[i] = edgeName(e, i)
		r.Links[i] = [2]int{r.net.NodeIndex(e.InputNode()), r.net.NodeIndex(e.OutputNode())}
		if q, err := e.Flow(units.Gpm); err == nil {
			r.Flows[i] = q
		}
	}
}

// Iterations 每次迭代过程的迭代次数
func (r *Record) Iterations() []int {
	out := make([]int, len(r.Runs))
	for i, run := range r.Runs {
		out[i] = len(run.Residual) - 1
	}
	return out
}

// Render 格式和输出内容
func (r *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(r) }

func nodeName(n element.Node, i int) string {
	if n == nil {
		return ""
	}
	if name := n.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s(%d)", n.Type(), i)
}

func edgeName(e element.Edge, i int) string {
	if name := e.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s(%d)", e.Type(), i)
}

// renderer 输出接口
type renderer interface {
	Render(w io.Writer) error
}

// WriteFile 渲染到文件
func WriteFile(path string, r renderer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return r.Render(f)
}
