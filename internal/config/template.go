package config

import (
	"encoding/json"
	"strings"
)

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 生成 1000 个 [-1000, 1000] 的随机数，使用 bottomup；
// - 组件名采用仓库内置实现；
// - 选项给出全部键与安全中性默认值。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Repeat = 5
	cfg.Concurrency = 2
	cfg.Algorithms = []string{"optimized", "topdown", "divconq", "bottomup"}
	cfg.Logging.Dir = "logs"
	// 策略当前无配置项，保持空对象
	cfg.Options.Strategy = json.RawMessage(`{}`)
	cfg.Options.Generator = json.RawMessage(`{
  "algorithm": "pcg"
}`)
	cfg.Options.Loader = json.RawMessage(`{
  "buf_size": 65536,
  "max_size": 0
}`)
	return cfg
}

// DotEnvTemplate 返回 .env 模板内容（全部支持的覆盖键，值为空）。
func DotEnvTemplate() string {
	var b strings.Builder
	b.WriteString("# maxsum .env 模板（由 init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > 配置文件\n")
	b.WriteString("# 空值表示未设置；按需填写。\n\n")

	b.WriteString("# 配置来源（可二选一；文件支持 .json / .yaml）\n")
	b.WriteString(EnvPrefix + "CONFIG_FILE=\n")
	b.WriteString(EnvPrefix + "CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	for _, k := range []string{"STRATEGY", "INPUTS", "SIZE", "MAX", "SEED", "MAX_DEPTH"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 对比参数\n")
	for _, k := range []string{"ALGORITHMS", "REPEAT", "CONCURRENCY"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 观测\n")
	for _, k := range []string{"LOG_LEVEL", "LOG_DIR", "METRICS_FILE"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 组件选择与选项（原样 JSON）\n")
	for _, k := range []string{"COMPONENTS_GENERATOR", "COMPONENTS_LOADER", "OPTIONS_STRATEGY_JSON", "OPTIONS_GENERATOR_JSON", "OPTIONS_LOADER_JSON"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	return b.String()
}
