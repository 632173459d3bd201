package units

import "fmt"

// Value 物理量数值
// 同时保存该类型全部单位下的数值，任一单位赋值后其余单位同步换算
type Value struct {
	kind   Kind
	values []float64
	set    bool
}

// New 创建未赋值的物理量
func New(kind Kind) *Value {
	return &Value{kind: kind}
}

// NewValue 创建并赋值
func NewValue(kind Kind, value float64, unit Unit) (*Value, error) {
	v := New(kind)
	if err := v.Set(value, unit); err != nil {
		return nil, err
	}
	return v, nil
}

// Kind 物理量类型
func (v *Value) Kind() Kind { return v.kind }

// IsSet 是否已赋值
func (v *Value) IsSet() bool { return v != nil && v.set }

// Set 按指定单位赋值，原地更新全部单位
func (v *Value) Set(value float64, unit Unit) error {
	t, ok := tables[v.kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUnit, v.kind)
	}
	i := t.index(unit)
	if i < 0 {
		return fmt.Errorf("%w: %s 不支持 %q", ErrUnknownUnit, v.kind, unit)
	}
	if v.values == nil {
		v.values = make([]float64, len(t.units))
	}
	for j, f := range t.conversion[i] {
		v.values[j] = value * f
	}
	// 保证原单位精确
	v.values[i] = value
	v.set = true
	return nil
}

// Get 读取指定单位的数值
func (v *Value) Get(unit Unit) (float64, error) {
	if !v.IsSet() {
		return 0, ErrNotSet
	}
	i := tables[v.kind].index(unit)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s 不支持 %q", ErrUnknownUnit, v.kind, unit)
	}
	return v.values[i], nil
}

// String 输出全部单位
func (v *Value) String() string {
	if !v.IsSet() {
		return fmt.Sprintf("%s{未设置}", v.kind)
	}
	str := v.kind.String() + "{"
	for i, u := range tables[v.kind].units {
		if i > 0 {
			str += " "
		}
		str += fmt.Sprintf("%g %s", v.values[i], u)
	}
	return str + "}"
}
