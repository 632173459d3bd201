package maths

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// 线性求解错误
var (
	ErrDimension     = errors.New("lu: 维度不匹配")
	ErrSingular      = errors.New("lu: 矩阵奇异")
	ErrNotDecomposed = errors.New("lu: 尚未分解")
)

// LU 稠密矩阵LU分解器（带部分主元，PA = LU）
// 分解一次后可对多个右端向量重复求解
type LU struct {
	n          int
	lu         mat.LU
	decomposed bool
}

// NewLU 创建稠密矩阵LU分解器
// 参数:
//
//	n - 矩阵维度（必须为正整数）
func NewLU(n int) (*LU, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d", ErrDimension, n)
	}
	return &LU{n: n}, nil
}

// Dim 矩阵维度
func (lu *LU) Dim() int { return lu.n }

// Decompose 分解矩阵A
// 主元为0或条件数非有限时返回 ErrSingular
func (lu *LU) Decompose(a mat.Matrix) error {
	r, c := a.Dims()
	if r != lu.n || c != lu.n {
		return fmt.Errorf("%w: 需要 %d×%d, 实际 %d×%d", ErrDimension, lu.n, lu.n, r, c)
	}
	lu.decomposed = false
	lu.lu.Factorize(a)
	if cond := lu.lu.Cond(); math.IsInf(cond, 0) || math.IsNaN(cond) {
		return ErrSingular
	}
	lu.decomposed = true
	return nil
}

// Cond 最近一次分解的条件数
func (lu *LU) Cond() float64 {
	if !lu.decomposed {
		return math.Inf(1)
	}
	return lu.lu.Cond()
}

// SolveReuse 利用分解结果求解 Ax = b，结果写入x
// 病态但非奇异的矩阵仍返回解
func (lu *LU) SolveReuse(b mat.Vector, x *mat.VecDense) error {
	if !lu.decomposed {
		return ErrNotDecomposed
	}
	if b.Len() != lu.n || x.Len() != lu.n {
		return fmt.Errorf("%w: 向量长度 %d/%d", ErrDimension, b.Len(), x.Len())
	}
	err := lu.lu.SolveVecTo(x, false, b)
	var cond mat.Condition
	if errors.As(err, &cond) {
		if math.IsInf(float64(cond), 0) {
			return ErrSingular
		}
		return nil
	}
	return err
}
