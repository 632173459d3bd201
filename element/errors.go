package element

import "errors"

// 结构错误
var (
	ErrConnected     = errors.New("端点已连接")
	ErrNodeType      = errors.New("节点类型不匹配")
	ErrIncomplete    = errors.New("管段参数或连接不完整")
	ErrUnknownCode   = errors.New("未注册的类型代码")
	ErrSchedule      = errors.New("管道规格不存在")
	ErrConcentration = errors.New("浓度必须在 [0,1) 区间")
	ErrCoefficient   = errors.New("系数必须为正数")
)
