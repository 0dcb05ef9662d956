package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON/YAML 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Strategy: 单次运行使用的策略（接受别名，见 contract.ParseStrategyID）。
	Strategy string `json:"strategy"`
	// Inputs: 外部数据根（文件或 "-"）；非空时忽略生成参数。
	Inputs []string `json:"inputs"`

	// 生成参数。Size 为指针以区分“未设置”与显式 0（空序列）。
	Size   *int   `json:"size"`
	MaxAbs int    `json:"max"`
	Seed   *int64 `json:"seed"`

	// MaxDepth: 递归深度预算（帧数）。
	MaxDepth int `json:"max_depth"`

	// 对比参数。
	Repeat      int      `json:"repeat"`
	Concurrency int      `json:"concurrency"`
	Algorithms  []string `json:"algorithms"`

	// MetricsFile: 非空时在退出前写出 prometheus 文本格式指标。
	MetricsFile string `json:"metrics_file"`

	Logging Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志等级与目录；轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Generator string `json:"generator"`
	Loader    string `json:"loader"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Strategy  json.RawMessage `json:"strategy"`
	Generator json.RawMessage `json:"generator"`
	Loader    json.RawMessage `json:"loader"`
}
