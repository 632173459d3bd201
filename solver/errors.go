package solver

import (
	"errors"
	"fmt"

	"hydraulic/maths"
	"hydraulic/network"
)

// 求解错误
var (
	ErrSingular     = maths.ErrSingular
	ErrNoInput      = network.ErrNoInput
	ErrDiverged     = errors.New("残差发散")
	ErrNotConverged = errors.New("达到最大迭代次数仍未收敛")
)

// NotConvergedError 有界求解未收敛，保留最后的残差
type NotConvergedError struct {
	Iterations int
	Residual   float64
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("%s: 迭代 %d 次, 残差 %g", ErrNotConverged, e.Iterations, e.Residual)
}

// Unwrap 支持 errors.Is(err, ErrNotConverged)
func (e *NotConvergedError) Unwrap() error { return ErrNotConverged }
