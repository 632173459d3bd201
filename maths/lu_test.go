package maths

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestLuDenseSolve 验证稠密矩阵 LU 分解和求解
func TestLuDenseSolve(t *testing.T) {
	// 求解线性方程组 Ax = b
	// A = [[2, 3, 1],
	//      [1, 2, 3],
	//      [3, 1, 2]]
	// b = [9, 6, 8]
	// 预期解 x = [35/18, 29/18, 5/18]
	a := mat.NewDense(3, 3, []float64{
		2, 3, 1,
		1, 2, 3,
		3, 1, 2,
	})
	b := mat.NewVecDense(3, []float64{9, 6, 8})

	lu, err := NewLU(3)
	if err != nil {
		t.Fatalf("NewLU 失败: %v", err)
	}
	if err := lu.Decompose(a); err != nil {
		t.Fatalf("分解失败: %v", err)
	}
	x := mat.NewVecDense(3, nil)
	if err := lu.SolveReuse(b, x); err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	expected := []float64{35.0 / 18.0, 29.0 / 18.0, 5.0 / 18.0}
	for i := range 3 {
		if math.Abs(x.AtVec(i)-expected[i]) > 1e-9 {
			t.Errorf("x[%d] 不正确: 期望 %f, 实际 %f", i, expected[i], x.AtVec(i))
		}
	}

	// 复用分解结果求解第二个右端向量
	b2 := mat.NewVecDense(3, []float64{6, 6, 6})
	if err := lu.SolveReuse(b2, x); err != nil {
		t.Fatalf("复用求解失败: %v", err)
	}
	for i := range 3 {
		if math.Abs(x.AtVec(i)-1) > 1e-9 {
			t.Errorf("x[%d] 不正确: 期望 1, 实际 %f", i, x.AtVec(i))
		}
	}
}

// TestLuSingular 奇异矩阵
func TestLuSingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	lu, _ := NewLU(2)
	if err := lu.Decompose(a); err != ErrSingular {
		t.Errorf("期望 ErrSingular, 实际 %v", err)
	}
	if err := lu.SolveReuse(mat.NewVecDense(2, nil), mat.NewVecDense(2, nil)); err != ErrNotDecomposed {
		t.Errorf("期望 ErrNotDecomposed, 实际 %v", err)
	}
	if err := lu.Decompose(mat.NewDense(2, 2, nil)); err != ErrSingular {
		t.Errorf("零矩阵期望 ErrSingular, 实际 %v", err)
	}
	if c := lu.Cond(); !math.IsInf(c, 1) {
		t.Errorf("分解失败后条件数应为 +Inf, 实际 %g", c)
	}
}

// TestLuDimension 维度检查
func TestLuDimension(t *testing.T) {
	if _, err := NewLU(0); err == nil {
		t.Error("维度为0应当报错")
	}
	lu, _ := NewLU(3)
	if lu.Dim() != 3 {
		t.Errorf("维度不正确: 期望 3, 实际 %d", lu.Dim())
	}
	if err := lu.Decompose(mat.NewDense(2, 2, []float64{1, 0, 0, 1})); err == nil {
		t.Error("维度不匹配应当报错")
	}
	if err := lu.SolveReuse(mat.NewVecDense(2, nil), mat.NewVecDense(3, nil)); err == nil {
		t.Error("未分解时求解应当报错")
	}
}

// TestLuRandom 随机对角占优矩阵，A·x 还原 b
func TestLuRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 1; n <= 12; n++ {
		a := mat.NewDense(n, n, nil)
		b := mat.NewVecDense(n, nil)
		for i := range n {
			sum := 0.0
			for j := range n {
				v := r.Float64()*2 - 1
				a.Set(i, j, v)
				sum += math.Abs(v)
			}
			a.Set(i, i, sum+1)
			b.SetVec(i, r.Float64()*10)
		}
		lu, err := NewLU(n)
		if err != nil {
			t.Fatalf("n=%d NewLU 失败: %v", n, err)
		}
		if err := lu.Decompose(a); err != nil {
			t.Fatalf("n=%d 分解失败: %v", n, err)
		}
		if c := lu.Cond(); c < 1 || math.IsInf(c, 0) {
			t.Errorf("n=%d 条件数不正确: %g", n, c)
		}
		x := mat.NewVecDense(n, nil)
		if err := lu.SolveReuse(b, x); err != nil {
			t.Fatalf("n=%d 求解失败: %v", n, err)
		}
		var ax mat.VecDense
		ax.MulVec(a, x)
		for i := range n {
			if math.Abs(ax.AtVec(i)-b.AtVec(i)) > 1e-9 {
				t.Errorf("n=%d 行 %d 残差过大: %g", n, i, ax.AtVec(i)-b.AtVec(i))
			}
		}
	}
}
