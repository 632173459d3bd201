package element

import (
	"fmt"
	"math"

	"hydraulic/units"
)

// CPower Hazen-Williams 流量指数
var CPower = 1.852

// Pipe Hazen-Williams 管道
type Pipe struct {
	EdgeBase
	length   *units.Value // 管长
	diameter *units.Value // 内径
	c        float64      // 粗糙系数
	k        *float64     // 阻力系数缓存，nil 表示失效
}

// NewPipe 创建管道
func NewPipe() *Pipe {
	return &Pipe{
		EdgeBase: newEdgeBase(),
		length:   units.New(units.Length),
		diameter: units.New(units.Length),
	}
}

// Type 管段类型
func (*Pipe) Type() EdgeType { return PipeType }

// Length 管长
func (p *Pipe) Length(unit units.Unit) (float64, error) { return p.length.Get(unit) }

// SetLength 设置管长
func (p *Pipe) SetLength(value float64, unit units.Unit) error {
	if err := p.length.Set(value, unit); err != nil {
		return err
	}
	p.k = nil
	return nil
}

// InnerDiameter 内径
func (p *Pipe) InnerDiameter(unit units.Unit) (float64, error) { return p.diameter.Get(unit) }

// SetInnerDiameter 设置内径
func (p *Pipe) SetInnerDiameter(value float64, unit units.Unit) error {
	if err := p.diameter.Set(value, unit); err != nil {
		return err
	}
	p.k = nil
	return nil
}

// C 粗糙系数，未设置时为0
func (p *Pipe) C() float64 { return p.c }

// SetC 设置粗糙系数
func (p *Pipe) SetC(c float64) error {
	if !(c > 0) {
		return fmt.Errorf("%w: C=%g", ErrCoefficient, c)
	}
	p.c = c
	p.k = nil
	return nil
}

// K 阻力系数 K = 4.52·L(ft) / (C^1.852·D(in)^4.87)
func (p *Pipe) K() (float64, error) {
	if p.k != nil {
		return *p.k, nil
	}
	if !p.length.IsSet() || !p.diameter.IsSet() || p.c == 0 {
		return 0, fmt.Errorf("%w: %q 管道参数未设置", ErrIncomplete, p.name)
	}
	feet, _ := p.length.Get(units.Foot)
	inches, _ := p.diameter.Get(units.Inch)
	k := 4.52 * feet / (math.Pow(p.c, CPower) * math.Pow(inches, 4.87))
	p.k = &k
	return k, nil
}

// CalculateFlow 流量 q = sign(dE)·|dE/K|^(1/1.852)
func (p *Pipe) CalculateFlow() (float64, error) {
	k, err := p.K()
	if err != nil {
		return 0, err
	}
	diff, err := p.energyDiff()
	if err != nil {
		return 0, err
	}
	var q float64
	if diff != 0 {
		r := diff / k
		q = math.Copysign(math.Pow(math.Abs(r), 1/CPower), r)
	}
	if err := p.SetFlow(q, units.Gpm); err != nil {
		return 0, err
	}
	return q, nil
}

// Jacobian 流量对节点能量的偏导
// 上游为正，下游为负，dE 为0时返回0
func (p *Pipe) Jacobian(node Node) (float64, error) {
	k, err := p.K()
	if err != nil {
		return 0, err
	}
	diff, err := p.energyDiff()
	if err != nil {
		return 0, err
	}
	dir := p.direction(node)
	if dir == 0 || diff == 0 {
		return 0, nil
	}
	return dir / (CPower * k) * math.Pow(math.Abs(diff/k), 1/CPower-1), nil
}

// HazenWilliamsLoss 按缓存流量计算沿程损失
func (p *Pipe) HazenWilliamsLoss(unit units.Unit) (float64, error) {
	k, err := p.K()
	if err != nil {
		return 0, err
	}
	q, err := p.Flow(units.Gpm)
	if err != nil {
		return 0, err
	}
	loss, err := units.NewValue(units.Pressure, k*q*math.Pow(math.Abs(q), CPower-1), units.Psi)
	if err != nil {
		return 0, err
	}
	return loss.Get(unit)
}

// IsComplete 参数与连接是否完整
func (p *Pipe) IsComplete() bool {
	return p.length.IsSet() && p.diameter.IsSet() && p.c > 0 && p.Connects()
}

// Schedule 管道壁厚等级
type Schedule string

// 管道壁厚等级
const (
	ScheduleStd Schedule = "Std"
	Schedule80  Schedule = "80"
)

// ansiTable 公称尺寸 -> {Std 内径, 80 内径}
var ansiTable = map[units.Unit]map[float64][2]float64{
	units.Inch: {
		1: {1.049, 0.957},
		2: {2.067, 1.939},
		3: {3.068, 2.9},
	},
	units.Millimeter: {
		25: {26.64, 24.3},
		50: {52.48, 49.22},
		80: {77.92, 73.66},
	},
}

// ANSIDiameter 查表获取内径
func ANSIDiameter(nominal float64, unit units.Unit, schedule Schedule) (float64, error) {
	sizes, ok := ansiTable[unit]
	if !ok {
		return 0, fmt.Errorf("%w: 单位 %q", ErrSchedule, unit)
	}
	row, ok := sizes[nominal]
	if !ok {
		return 0, fmt.Errorf("%w: 公称尺寸 %g %s", ErrSchedule, nominal, unit)
	}
	switch schedule {
	case ScheduleStd:
		return row[0], nil
	case Schedule80:
		return row[1], nil
	}
	return 0, fmt.Errorf("%w: 等级 %q", ErrSchedule, schedule)
}

// NewANSIPipe 按 ANSI 规格创建管道，C 取 100
func NewANSIPipe(nominal float64, unit units.Unit, schedule Schedule) (*Pipe, error) {
	d, err := ANSIDiameter(nominal, unit, schedule)
	if err != nil {
		return nil, err
	}
	p := NewPipe()
	if err := p.SetInnerDiameter(d, unit); err != nil {
		return nil, err
	}
	p.c = 100
	return p, nil
}
