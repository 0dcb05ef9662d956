package config

import (
	"errors"
	"fmt"
	"strings"

	"maxsum/internal/bench"
	"maxsum/pkg/contract"
	"maxsum/pkg/registry"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate 对最小必要边界做静态校验。
// 参数越界类错误包裹 contract.ErrInvalidParameter。
func Validate(cfg Config) error {
	if _, err := contract.ParseStrategyID(cfg.Strategy); err != nil {
		return fmt.Errorf("config: strategy: %w", err)
	}
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		if strings.TrimSpace(r) == "" {
			return errors.New("config: input path cannot be empty")
		}
		if strings.TrimSpace(r) == "-" {
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return errors.New("config: '-' cannot be mixed with other roots")
	}
	if len(cfg.Inputs) == 0 {
		if err := contract.CheckGenParams(genParams(cfg)); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if cfg.MaxDepth < 1 {
		return fmt.Errorf("config: %w: max_depth must be >= 1", contract.ErrInvalidParameter)
	}
	if cfg.Repeat < 1 {
		return fmt.Errorf("config: %w: repeat must be >= 1", contract.ErrInvalidParameter)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("config: %w: concurrency must be >= 1", contract.ErrInvalidParameter)
	}
	for _, a := range cfg.Algorithms {
		if _, err := contract.ParseStrategyID(a); err != nil {
			return fmt.Errorf("config: algorithms: %w", err)
		}
	}
	if lv := strings.ToLower(strings.TrimSpace(cfg.Logging.Level)); lv != "" && !logLevels[lv] {
		return fmt.Errorf("config: logging.level %q not one of debug|info|warn|error", cfg.Logging.Level)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	if name := effName(cfg.Components.Generator, Defaults().Components.Generator); registry.Generator[name] == nil {
		return fmt.Errorf("config: generator %q not registered (have %v)", name, registry.Names(registry.Generator))
	}
	if name := effName(cfg.Components.Loader, Defaults().Components.Loader); registry.Loader[name] == nil {
		return fmt.Errorf("config: loader %q not registered (have %v)", name, registry.Names(registry.Loader))
	}
	return nil
}

// Assemble 构造单次运行的 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (bench.Components, bench.Settings, error) {
	if err := Validate(cfg); err != nil {
		return bench.Components{}, bench.Settings{}, err
	}
	id, s, err := registry.LookupStrategy(cfg.Strategy, cfg.Options.Strategy)
	if err != nil {
		return bench.Components{}, bench.Settings{}, err
	}
	comp, err := sources(cfg)
	if err != nil {
		return bench.Components{}, bench.Settings{}, err
	}
	comp.StrategyID = id
	comp.Strategy = s
	return comp, settings(cfg), nil
}

// AssembleCompare 构造对比所需的策略集合（Algorithms 为空时取全部）、数据源与 Settings。
// 重复出现的策略只保留首个。
func AssembleCompare(cfg Config) ([]bench.Entry, bench.Components, bench.Settings, error) {
	if err := Validate(cfg); err != nil {
		return nil, bench.Components{}, bench.Settings{}, err
	}
	names := cfg.Algorithms
	if len(names) == 0 {
		for _, id := range contract.StrategyIDs {
			names = append(names, string(id))
		}
	}
	seen := map[contract.StrategyID]bool{}
	entries := make([]bench.Entry, 0, len(names))
	for _, n := range names {
		id, s, err := registry.LookupStrategy(n, cfg.Options.Strategy)
		if err != nil {
			return nil, bench.Components{}, bench.Settings{}, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		entries = append(entries, bench.Entry{ID: id, Strategy: s})
	}
	comp, err := sources(cfg)
	if err != nil {
		return nil, bench.Components{}, bench.Settings{}, err
	}
	return entries, comp, settings(cfg), nil
}

// sources 构造 Generator 与 Loader（两者均构造，按 Inputs 是否为空选用）。
func sources(cfg Config) (bench.Components, error) {
	d := Defaults()
	gn := effName(cfg.Components.Generator, d.Components.Generator)
	ln := effName(cfg.Components.Loader, d.Components.Loader)
	g, err := registry.Generator[gn](cfg.Options.Generator)
	if err != nil {
		return bench.Components{}, fmt.Errorf("generator %s: %w", gn, err)
	}
	l, err := registry.Loader[ln](cfg.Options.Loader)
	if err != nil {
		return bench.Components{}, fmt.Errorf("loader %s: %w", ln, err)
	}
	return bench.Components{Generator: g, Loader: l}, nil
}

func settings(cfg Config) bench.Settings {
	return bench.Settings{
		Inputs:      cloneStrings(cfg.Inputs),
		Params:      genParams(cfg),
		MaxDepth:    cfg.MaxDepth,
		Repeat:      cfg.Repeat,
		Concurrency: cfg.Concurrency,
	}
}

// GenParams 由配置导出生成参数。
func GenParams(cfg Config) contract.GenParams { return genParams(cfg) }

func genParams(cfg Config) contract.GenParams {
	p := contract.GenParams{MaxAbs: cfg.MaxAbs}
	if cfg.Size != nil {
		p.Size = *cfg.Size
	}
	if cfg.Seed != nil {
		v := *cfg.Seed
		p.Seed = &v
	}
	return p
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
