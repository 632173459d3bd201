package debug

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrEmpty 没有可绘制的数据
var ErrEmpty = errors.New("debug: 没有迭代记录")

// 图片尺寸
var (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 5 * vg.Inch
)

var palette = []color.RGBA{
	{R: 0xc7, G: 0x19, B: 0x79, A: 0xff},
	{R: 0x19, G: 0x87, B: 0xc7, A: 0xff},
	{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff},
	{R: 0xd2, G: 0x69, B: 0x1e, A: 0xff},
}

// Plot 残差收敛图
type Plot struct {
	*Record
}

// Render 输出 PNG，纵轴为 log10(残差)，残差为0的点不绘制
func (p *Plot) Render(w io.Writer) error {
	if len(p.Runs) == 0 {
		return ErrEmpty
	}
	img := plot.New()
	img.Title.Text = "残差收敛"
	img.X.Label.Text = "迭代次数"
	img.Y.Label.Text = "log10(残差 gpm)"
	img.Add(plotter.NewGrid())

	for r, run := range p.Runs {
		xys := make(plotter.XYs, 0, len(run.Residual))
		for i, v := range run.Residual {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(i), Y: math.Log10(v)})
		}
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("第 %d 次迭代过程: %w", r+1, err)
		}
		c := palette[r%len(palette)]
		line.Color, points.Color = c, c
		img.Add(line, points)
		img.Legend.Add(fmt.Sprintf("#%d", r+1), line, points)
	}

	wt, err := img.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
