package units

import (
	"errors"
	"fmt"
	"math"
)

// 单位换算常量
const (
	PsiToKPa  = 6.894757 // 1 psi 对应 kPa
	MH2OToKPa = 9.80638  // 1 mH2O 对应 kPa
	InToMm    = 25.4     // 1 in 对应 mm
	FtToMm    = InToMm * 12
	GalToLt   = 3.785411 // 1 gal 对应 lt
)

// 错误定义
var (
	ErrUnknownUnit = errors.New("未知单位")
	ErrNotSet      = errors.New("数值未设置")
)

// Unit 单位标识，区分大小写
type Unit string

// 压力单位
const (
	Psi  Unit = "psi"
	Pa   Unit = "Pa"
	KPa  Unit = "kPa"
	MH2O Unit = "mH2O"
)

// 长度单位
const (
	Meter      Unit = "m"
	Foot       Unit = "ft"
	Inch       Unit = "in"
	Millimeter Unit = "mm"
)

// 体积单位
const (
	Liter      Unit = "lt"
	Gallon     Unit = "gal"
	CubicMeter Unit = "m3"
)

// 时间单位
const (
	Minute Unit = "min"
	Hour   Unit = "hr"
)

// 体积流量单位
const (
	Gpm Unit = "gpm"
	M3H Unit = "m3/H"
	Lpm Unit = "lpm"
)

// 喷嘴系数单位
const (
	GpmPsi Unit = "gpm/psi^0.5"
	LpmBar Unit = "lpm/bar^0.5"
)

// Kind 物理量类型
type Kind uint8

const (
	Pressure Kind = iota // 压力
	Length               // 长度
	Volume               // 体积
	Time                 // 时间
	VolFlow              // 体积流量
	NozzleK              // 喷嘴系数
)

// table 单位表，conversion[i][j] 为第i个单位换算到第j个单位的系数
type table struct {
	name       string
	units      []Unit
	conversion [][]float64
}

// tables 各物理量单位表
var tables = map[Kind]*table{}

// 单位表初始化
func init() {
	tables[Pressure] = byBase("Pressure", []Unit{Psi, Pa, KPa, MH2O}, []float64{PsiToKPa, 1e-3, 1, MH2OToKPa})
	tables[Length] = byBase("Length", []Unit{Meter, Foot, Inch, Millimeter}, []float64{1000, FtToMm, InToMm, 1})
	tables[Volume] = byBase("Volume", []Unit{Liter, Gallon, CubicMeter}, []float64{1, GalToLt, 1000})
	tables[Time] = byBase("Time", []Unit{Minute, Hour}, []float64{1, 60})
	// 流量由体积和时间推导
	galToM3 := tables[Volume].factor(1, 2)
	minToHr := tables[Time].factor(0, 1)
	tables[VolFlow] = &table{
		name:  "VolFlow",
		units: []Unit{Gpm, M3H, Lpm},
		conversion: [][]float64{
			{1, galToM3 * 60, GalToLt},
			{tables[Volume].factor(2, 1) * minToHr, 1, 1000 / 60.0},
			{1 / GalToLt, 60 / 1000.0, 1},
		},
	}
	psiToKPa := tables[Pressure].factor(0, 2)
	tables[NozzleK] = &table{
		name:  "NozzleK",
		units: []Unit{GpmPsi, LpmBar},
		conversion: [][]float64{
			{1, GalToLt * math.Sqrt(100/psiToKPa)},
			{math.Sqrt(psiToKPa/100) / GalToLt, 1},
		},
	}
}

// byBase 由各单位对应基准单位的数值生成换算矩阵
func byBase(name string, list []Unit, base []float64) *table {
	conversion := make([][]float64, len(list))
	for i := range list {
		conversion[i] = make([]float64, len(list))
		for j := range list {
			if i == j {
				conversion[i][j] = 1
				continue
			}
			conversion[i][j] = base[i] / base[j]
		}
	}
	return &table{name: name, units: list, conversion: conversion}
}

func (t *table) factor(from, to int) float64 { return t.conversion[from][to] }

// index 单位索引
func (t *table) index(unit Unit) int {
	for i, u := range t.units {
		if u == unit {
			return i
		}
	}
	return -1
}

// String 类型名称
func (k Kind) String() string {
	if t, ok := tables[k]; ok {
		return t.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Units 该类型支持的单位列表
func (k Kind) Units() []Unit {
	t, ok := tables[k]
	if !ok {
		return nil
	}
	return append([]Unit(nil), t.units...)
}

// Supports 检查单位是否属于该类型
func (k Kind) Supports(unit Unit) bool {
	t, ok := tables[k]
	return ok && t.index(unit) >= 0
}
