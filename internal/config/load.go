package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"maxsum/internal/bench"
)

// EnvPrefix 环境变量前缀。
const EnvPrefix = "MAXSUM_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	size := 1000
	return Config{
		Strategy:    "bottomup",
		Size:        &size,
		MaxAbs:      1000,
		MaxDepth:    bench.DefaultMaxDepth,
		Repeat:      1,
		Concurrency: 1,
		Logging:     Logging{Level: "info"},
		Components: Components{
			Generator: "uniform",
			Loader:    "text",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	return decodeStrict(r)
}

// LoadYAML 解析 YAML：先解码为通用树，再转为 JSON 走同一严格解码，
// 因此字段名、未知字段规则与 JSON 完全一致。
func LoadYAML(path string, raw []byte) (Config, error) {
	if len(raw) == 0 {
		if path == "" {
			return Config{}, errors.New("no config source provided")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		raw = b
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return Config{}, fmt.Errorf("yaml: %w", err)
	}
	if tree == nil {
		return Config{}, nil
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return Config{}, fmt.Errorf("yaml to json: %w", err)
	}
	return decodeStrict(bytes.NewReader(b))
}

// LoadFile 按扩展名选择解析器：.yaml/.yml 走 YAML，其余按 JSON。
func LoadFile(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, nil)
	default:
		return LoadJSON(path, nil)
	}
}

func decodeStrict(r io.Reader) (Config, error) {
	var cfg Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if s := strings.TrimSpace(over.Strategy); s != "" {
		out.Strategy = s
	}
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Size != nil {
		v := *over.Size
		out.Size = &v
	}
	if over.MaxAbs != 0 {
		out.MaxAbs = over.MaxAbs
	}
	if over.Seed != nil {
		v := *over.Seed
		out.Seed = &v
	}
	if over.MaxDepth != 0 {
		out.MaxDepth = over.MaxDepth
	}
	if over.Repeat != 0 {
		out.Repeat = over.Repeat
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if len(over.Algorithms) > 0 {
		out.Algorithms = cloneStrings(over.Algorithms)
	}
	if s := strings.TrimSpace(over.MetricsFile); s != "" {
		out.MetricsFile = s
	}
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}

	// 组件名（空不覆盖）
	if over.Components.Generator != "" {
		out.Components.Generator = over.Components.Generator
	}
	if over.Components.Loader != "" {
		out.Components.Loader = over.Components.Loader
	}

	// Options（完整替换对应键）
	if len(over.Options.Strategy) > 0 {
		out.Options.Strategy = cloneRaw(over.Options.Strategy)
	}
	if len(over.Options.Generator) > 0 {
		out.Options.Generator = cloneRaw(over.Options.Generator)
	}
	if len(over.Options.Loader) > 0 {
		out.Options.Loader = cloneRaw(over.Options.Loader)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 MAXSUM_；集合之外的键忽略；数值非法时返回错误。
// 支持：STRATEGY, INPUTS, SIZE, MAX, SEED, MAX_DEPTH, REPEAT, CONCURRENCY, ALGORITHMS,
// METRICS_FILE, LOG_LEVEL, LOG_DIR, COMPONENTS_{GENERATOR,LOADER}, OPTIONS_{STRATEGY,GENERATOR,LOADER}_JSON
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[:eq]
		val := strings.TrimSpace(kv[eq+1:])
		if val == "" {
			// 空值视为未设置，避免清空文件配置
			continue
		}
		nk := strings.TrimPrefix(key, EnvPrefix)
		var err error
		switch nk {
		case "STRATEGY":
			over.Strategy = val
		case "INPUTS":
			over.Inputs = splitComma(val)
		case "SIZE":
			var v int
			if v, err = atoi(val); err == nil {
				over.Size = &v
			}
		case "MAX":
			over.MaxAbs, err = atoi(val)
		case "SEED":
			var v int64
			if v, err = strconv.ParseInt(val, 10, 64); err == nil {
				over.Seed = &v
			}
		case "MAX_DEPTH":
			over.MaxDepth, err = atoi(val)
		case "REPEAT":
			over.Repeat, err = atoi(val)
		case "CONCURRENCY":
			over.Concurrency, err = atoi(val)
		case "ALGORITHMS":
			over.Algorithms = splitComma(val)
		case "METRICS_FILE":
			over.MetricsFile = val
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "LOG_DIR":
			over.Logging.Dir = val
		case "COMPONENTS_GENERATOR":
			over.Components.Generator = val
		case "COMPONENTS_LOADER":
			over.Components.Loader = val
		case "OPTIONS_STRATEGY_JSON":
			over.Options.Strategy = json.RawMessage(val)
		case "OPTIONS_GENERATOR_JSON":
			over.Options.Generator = json.RawMessage(val)
		case "OPTIONS_LOADER_JSON":
			over.Options.Loader = json.RawMessage(val)
		default:
			// 非本集合的键忽略（例如 CONFIG_FILE / CONFIG_JSON 由 CLI 读取）。
		}
		if err != nil {
			return Config{}, fmt.Errorf("env %s: %w", key, err)
		}
	}
	return over, nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
