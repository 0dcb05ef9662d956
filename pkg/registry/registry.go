package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"maxsum/pkg/contract"
	ugen "maxsum/plugins/generator/uniform"
	ltext "maxsum/plugins/loader/text"
	sbu "maxsum/plugins/strategy/bottomup"
	sdc "maxsum/plugins/strategy/divconq"
	siter "maxsum/plugins/strategy/iterative"
	sopt "maxsum/plugins/strategy/optimized"
	std "maxsum/plugins/strategy/topdown"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewStrategy 工厂签名：接收原样 JSON Options。
type NewStrategy func(raw json.RawMessage) (contract.Strategy, error)

// NewGenerator 工厂签名：接收原样 JSON Options。
type NewGenerator func(raw json.RawMessage) (contract.Generator, error)

// NewLoader 工厂签名：接收原样 JSON Options。
type NewLoader func(raw json.RawMessage) (contract.Loader, error)

// strategyFactory: 策略均无配置项，仍走严格解码以拒绝拼写错误。
func strategyFactory[O any](mk func(json.RawMessage) (contract.Strategy, error)) NewStrategy {
	return func(raw json.RawMessage) (contract.Strategy, error) {
		var opts O
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return mk(raw)
	}
}

// Strategy 工厂注册表（显式、零反射）。
var Strategy = map[contract.StrategyID]NewStrategy{
	contract.IterativeDirect:  strategyFactory[siter.Options](siter.New),
	contract.OptimizedDirect:  strategyFactory[sopt.Options](sopt.New),
	contract.TopDown:          strategyFactory[std.Options](std.New),
	contract.DivideAndConquer: strategyFactory[sdc.Options](sdc.New),
	contract.BottomUp:         strategyFactory[sbu.Options](sbu.New),
}

// Generator 工厂注册表。
var Generator = map[string]NewGenerator{
	// uniform: [-max, max] 均匀分布；algorithm 选择 pcg / lcg48
	"uniform": func(raw json.RawMessage) (contract.Generator, error) {
		var opts ugen.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ugen.New(&opts)
	},
}

// Loader 工厂注册表。
var Loader = map[string]NewLoader{
	// text: 文件/STDIN 中的十进制整数
	"text": func(raw json.RawMessage) (contract.Loader, error) {
		var opts ltext.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ltext.New(&opts), nil
	},
}

// LookupStrategy 解析名称（含别名）并构造策略实例。
func LookupStrategy(name string, raw json.RawMessage) (contract.StrategyID, contract.Strategy, error) {
	id, err := contract.ParseStrategyID(name)
	if err != nil {
		return "", nil, err
	}
	mk, ok := Strategy[id]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q not registered", contract.ErrUnknownStrategy, id)
	}
	s, err := mk(raw)
	if err != nil {
		return "", nil, err
	}
	return id, s, nil
}

// Names 返回某注册表的有序键集合（用于提示与校验信息）。
func Names[K ~string, V any](m map[K]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
