package solver

// 默认参数
var (
	Tolerance         = 1e-4 // 收敛容差：各节点流量不平衡绝对值之和(gpm)
	BoundedIterations = 35   // 有界求解的最大迭代次数
)

// 指标标签
const (
	nameNewton  = "newton"
	nameBounded = "bounded"
	nameRemote  = "remote"
)
