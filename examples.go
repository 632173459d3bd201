package hydraulic

import (
	"fmt"
	"io"

	"hydraulic/config"
	"hydraulic/element"
	"hydraulic/units"
)

// build 依次执行构建步骤
func build(cfg *config.Config, w io.Writer, steps ...func(h *Hydraulic) error) (*Hydraulic, error) {
	h := New(cfg, w)
	for _, step := range steps {
		if err := step(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func pipes(lengths, diameters []float64) func(h *Hydraulic) error {
	return func(h *Hydraulic) error {
		for i := range lengths {
			if _, err := h.AddPipe(lengths[i], units.Meter, diameters[i], units.Inch, 100); err != nil {
				return fmt.Errorf("管道 %d: %w", i, err)
			}
		}
		return nil
	}
}

// FourReservoirs 四个水池经五根管道连接两个节点
func FourReservoirs(cfg *config.Config, w io.Writer) (*Hydraulic, error) {
	return build(cfg, w,
		func(h *Hydraulic) error {
			_, err := h.AddNodes("eeeecc", []float64{100, 85, 65, 65, 70, 70}, units.Meter)
			return err
		},
		pipes([]float64{1000, 1200, 900, 500, 600}, []float64{10.75, 7.981, 7.981, 6.065, 6.065}),
		func(h *Hydraulic) error {
			return h.Connect([3]int{2, 4, 5}, [3]int{1, 1, 4}, [3]int{0, 0, 4}, [3]int{3, 5, 2}, [3]int{4, 5, 3})
		},
	)
}

// ReservoirNozzles 三个水池供给三个喷嘴
func ReservoirNozzles(cfg *config.Config, w io.Writer) (*Hydraulic, error) {
	return build(cfg, w,
		func(h *Hydraulic) error {
			_, err := h.AddNodes("eeccceeec", []float64{30, 35, 25, 0, 0, 0, 0, 0, 0}, units.Meter)
			return err
		},
		pipes([]float64{100, 150, 20, 2, 2}, []float64{1.939, 1.939, 1.939, .957, .957}),
		func(h *Hydraulic) error {
			for range 3 {
				if _, err := h.AddNozzle(2, 0); err != nil {
					return err
				}
			}
			return h.Connect(
				[3]int{0, 0, 2}, [3]int{1, 1, 2}, [3]int{2, 2, 3}, [3]int{5, 3, 5},
				[3]int{3, 3, 4}, [3]int{4, 4, 8}, [3]int{6, 4, 6}, [3]int{7, 8, 7},
			)
		},
	)
}

// RemoteNozzles 入口节点直接连接若干喷嘴，节点高程均为10 m
func RemoteNozzles(cfg *config.Config, w io.Writer, factors, required []float64) (*Hydraulic, error) {
	if len(factors) != len(required) {
		return nil, fmt.Errorf("喷嘴系数 %d 个，要求压力 %d 个", len(factors), len(required))
	}
	return build(cfg, w,
		func(h *Hydraulic) error {
			_, err := h.AddNodes("i", []float64{10}, units.Meter)
			return err
		},
		func(h *Hydraulic) error {
			for i := range factors {
				end, err := h.AddNodes("e", []float64{10}, units.Meter)
				if err != nil {
					return err
				}
				edge, err := h.AddNozzle(factors[i], required[i])
				if err != nil {
					return fmt.Errorf("喷嘴 %d: %w", i, err)
				}
				if err := h.Connect([3]int{edge, 0, end}); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// EductorNozzles 水池经引射器供给两个喷嘴
func EductorNozzles(cfg *config.Config, w io.Writer) (*Hydraulic, error) {
	return build(cfg, w,
		func(h *Hydraulic) error {
			_, err := h.AddNodes("enocece", []float64{20, 0, 0, 0, 0, 0, 0}, units.Meter)
			return err
		},
		func(h *Hydraulic) error {
			ansi := func(nominal, length float64) error {
				_, err := h.AddANSIPipe(nominal, units.Inch, element.Schedule80, length, units.Meter)
				return err
			}
			if err := ansi(2, 30); err != nil {
				return err
			}
			if _, err := h.AddEductor(7, 0.03); err != nil {
				return err
			}
			if err := ansi(1, 1); err != nil {
				return err
			}
			if _, err := h.AddNozzle(3.2, 15); err != nil {
				return err
			}
			if err := ansi(1, 1); err != nil {
				return err
			}
			_, err := h.AddNozzle(3.2, 15)
			return err
		},
		func(h *Hydraulic) error {
			return h.Connect(
				[3]int{0, 0, 1}, [3]int{1, 1, 2}, [3]int{2, 2, 3},
				[3]int{3, 3, 4}, [3]int{4, 3, 5}, [3]int{5, 5, 6},
			)
		},
	)
}
