package main

import (
	"fmt"
	"io"

	"hydraulic"
	"hydraulic/config"
	"hydraulic/metrics"

	"github.com/spf13/cobra"
)

// builder 构建示例管网
type builder func(cfg *config.Config, w io.Writer) (*hydraulic.Hydraulic, error)

// options 全局参数
type options struct {
	configPath string
	seed       uint64
	metrics    bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:          "hydraulic",
		Short:        "管网水力计算",
		Long:         "以 Hazen-Williams 管道模型和喷嘴平方根规律求解管网各节点压力与管段流量。",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "配置文件(YAML)")
	root.PersistentFlags().Uint64Var(&o.seed, "seed", 0, "初值随机种子，覆盖配置文件")
	root.PersistentFlags().BoolVar(&o.metrics, "metrics", false, "求解后输出 Prometheus 指标")

	var factors, required []float64
	remote := &cobra.Command{
		Use:   "remote-nozzles",
		Short: "入口节点供给若干喷嘴，按喷嘴要求压力求入口流量",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, func(cfg *config.Config, w io.Writer) (*hydraulic.Hydraulic, error) {
				return hydraulic.RemoteNozzles(cfg, w, factors, required)
			}, true)
		},
	}
	remote.Flags().Float64SliceVar(&factors, "k", []float64{2, 1}, "喷嘴系数(gpm/psi^0.5)")
	remote.Flags().Float64SliceVar(&required, "required", []float64{25, 36}, "喷嘴要求压力(psi)")

	root.AddCommand(
		o.example("four-reservoirs", "四个水池经五根管道连接两个节点", hydraulic.FourReservoirs),
		o.example("reservoir-nozzles", "三个水池供给三个喷嘴", hydraulic.ReservoirNozzles),
		o.example("eductor", "水池经引射器供给两个喷嘴", hydraulic.EductorNozzles),
		remote,
	)
	return root
}

func (o *options) example(use, short string, build builder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, build, false)
		},
	}
}

// load 读取配置，命令行参数优先
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("seed") {
		cfg.Solver.Seed = &o.seed
	}
	return cfg, nil
}

func (o *options) run(cmd *cobra.Command, build builder, remote bool) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return err
	}
	h, err := build(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("构建管网: %w", err)
	}
	if o.metrics {
		h.Metrics = metrics.NewRegistry()
	}

	solve := h.Solve
	if remote {
		solve = h.SolveRemote
	}
	if _, err := solve(cmd.Context()); err != nil {
		return err
	}
	report, err := h.Report()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, nodeTable(report))
	fmt.Fprintln(out, edgeTable(report))
	if o.metrics {
		return h.Metrics.WriteText(out)
	}
	return nil
}
