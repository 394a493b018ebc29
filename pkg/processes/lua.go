package processes

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// LuaConfig holds a scripted process: its ports and a Lua chunk defining
//
//	function update(inputs, interval) return {port = value} end
type LuaConfig struct {
	Script  string            `mapstructure:"script"`
	Inputs  map[string]string `mapstructure:"inputs"`
	Outputs map[string]string `mapstructure:"outputs"`
}

// UpdateFunction is the global the script must define.
const UpdateFunction = "update"

type luaProcess struct {
	cfg LuaConfig
	l   *lua.State
}

// Lua is a process whose update is written in Lua.
func Lua() registry.Implementation {
	ports := map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "string"},
		"default":              map[string]any{},
	}
	return registry.Implementation{
		Kind:        domain.KindProcess,
		Description: "runs the update function of a Lua script",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"script"},
			"properties": map[string]any{
				"script":  map[string]any{"type": "string", "minLength": 1},
				"inputs":  ports,
				"outputs": ports,
			},
		},
		New: newLuaProcess,
	}
}

func newLuaProcess(config map[string]any) (registry.Process, error) {
	var cfg LuaConfig
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return nil, fmt.Errorf("invalid lua config: %w", err)
	}

	l := lua.NewState()
	setupSandbox(l)
	if err := lua.DoString(l, cfg.Script); err != nil {
		return nil, fmt.Errorf("script error: %w", err)
	}
	l.Global(UpdateFunction)
	defined := l.TypeOf(-1) == lua.TypeFunction
	l.Pop(1)
	if !defined {
		return nil, fmt.Errorf("script does not define %s(inputs, interval)", UpdateFunction)
	}
	return &luaProcess{cfg: cfg, l: l}, nil
}

func (p *luaProcess) Inputs() registry.Ports  { return registry.Ports(p.cfg.Inputs) }
func (p *luaProcess) Outputs() registry.Ports { return registry.Ports(p.cfg.Outputs) }

func (p *luaProcess) Update(inputs map[string]any, interval float64) (map[string]any, error) {
	l := p.l
	l.Global(UpdateFunction)
	pushValue(l, inputs)
	l.PushNumber(interval)
	if err := l.ProtectedCall(2, 1, 0); err != nil {
		l.Pop(1)
		return nil, fmt.Errorf("update error: %w", err)
	}
	result := pullValue(l, -1)
	l.Pop(1)

	switch out := result.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return out, nil
	default:
		return nil, fmt.Errorf("update must return a table keyed by port, got %T", result)
	}
}

// setupSandbox loads only the libraries a pure computation needs.
func setupSandbox(l *lua.State) {
	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	lua.Require(l, "string", lua.StringOpen, true)
	l.Pop(1)
	lua.Require(l, "table", lua.TableOpen, true)
	l.Pop(1)
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		l.PushNil()
		l.SetGlobal(name)
	}
}

// pushValue converts a Go value to Lua.
func pushValue(l *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(val)
	case int:
		l.PushInteger(val)
	case float64:
		l.PushNumber(val)
	case string:
		l.PushString(val)
	case []any:
		l.NewTable()
		for i, item := range val {
			l.PushInteger(i + 1)
			pushValue(l, item)
			l.SetTable(-3)
		}
	case map[string]any:
		l.NewTable()
		for k, item := range val {
			l.PushString(k)
			pushValue(l, item)
			l.SetTable(-3)
		}
	default:
		l.PushString(fmt.Sprint(val))
	}
}

// pullValue converts a Lua value to Go. Tables with keys 1..n become slices.
func pullValue(l *lua.State, idx int) any {
	switch l.TypeOf(idx) {
	case lua.TypeBoolean:
		return l.ToBoolean(idx)
	case lua.TypeNumber:
		n, _ := l.ToNumber(idx)
		return n
	case lua.TypeString:
		s, _ := l.ToString(idx)
		return s
	case lua.TypeTable:
		return pullTable(l, idx)
	default:
		return nil
	}
}

func pullTable(l *lua.State, idx int) any {
	l.PushValue(idx)

	isArray := true
	maxIndex := 0
	l.PushNil()
	for l.Next(-2) {
		if l.TypeOf(-2) != lua.TypeNumber {
			isArray = false
			l.Pop(2)
			break
		}
		n, _ := l.ToNumber(-2)
		if i := int(n); i > maxIndex {
			maxIndex = i
		}
		l.Pop(1)
	}

	if isArray && maxIndex > 0 {
		arr := make([]any, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			l.PushInteger(i)
			l.Table(-2)
			arr[i-1] = pullValue(l, -1)
			l.Pop(1)
		}
		l.Pop(1)
		return arr
	}

	obj := make(map[string]any)
	l.PushNil()
	for l.Next(-2) {
		// Convert a copy: ToString on the key itself would break Next.
		l.PushValue(-2)
		key, _ := l.ToString(-1)
		l.Pop(1)
		obj[key] = pullValue(l, -1)
		l.Pop(1)
	}
	l.Pop(1)
	return obj
}
