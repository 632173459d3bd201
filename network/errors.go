package network

import "errors"

// 网络结构错误
var (
	ErrNilElement    = errors.New("节点或管段为空")
	ErrDuplicateNode = errors.New("节点重复添加")
	ErrDuplicateEdge = errors.New("管段重复添加")
	ErrSecondInput   = errors.New("网络只能有一个入口节点")
	ErrNoInput       = errors.New("网络没有入口节点")
	ErrIndex         = errors.New("索引越界")
	ErrNotEndpoint   = errors.New("节点不是管段端点")
	ErrNotFound      = errors.New("名称不存在")
	ErrNameTaken     = errors.New("名称已被占用")
	ErrNotNozzle     = errors.New("管段不是喷嘴")
	ErrNotJunction   = errors.New("喷嘴上游不是压力未知节点")
	ErrHeld          = errors.New("已有喷嘴处于拆下状态")
	ErrNotHeld       = errors.New("没有拆下的喷嘴")
)
