package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"hydraulic/solver"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid 配置校验失败
var ErrInvalid = errors.New("config: 配置无效")

var validate = validator.New()

// Config 求解配置
type Config struct {
	Solver Solver `yaml:"solver"`
	Log    Log    `yaml:"log"`
	Debug  Debug  `yaml:"debug"`
}

// Solver 求解器参数
type Solver struct {
	Tolerance     float64 `yaml:"tolerance" validate:"gt=0"`
	MaxIterations int     `yaml:"max_iterations" validate:"gte=0"`
	Bounded       bool    `yaml:"bounded"`
	Seed          *uint64 `yaml:"seed"` // 为空时使用随机种子
}

// Log 日志参数
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Debug 调试输出路径，为空表示不输出
type Debug struct {
	Record string `yaml:"record"` // 迭代记录 JSON
	Chart  string `yaml:"chart"`  // HTML 曲线
	Plot   string `yaml:"plot"`   // 残差 PNG
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Solver: Solver{Tolerance: solver.Tolerance},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load 读取配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置 %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 在默认配置上解析 YAML 并校验
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			msgs := make([]string, 0, len(fields))
			for _, f := range fields {
				msgs = append(msgs, fmt.Sprintf("%s 不满足 %s %s", f.Namespace(), f.Tag(), f.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Logger 按配置创建日志
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Options 转换为求解器选项
func (c *Config) Options() []solver.Option {
	opts := []solver.Option{solver.WithTolerance(c.Solver.Tolerance)}
	if c.Solver.MaxIterations > 0 {
		opts = append(opts, solver.WithMaxIterations(c.Solver.MaxIterations))
	}
	if c.Solver.Seed != nil {
		opts = append(opts, solver.WithSeed(*c.Solver.Seed))
	}
	return opts
}
