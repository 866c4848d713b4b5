// Package script runs the user's Lua configuration and turns its field
// globals into update strategies.
//
// An Environment wraps one Lua interpreter. Interpreters are not safe for
// concurrent use, so every background watcher builds its own Environment from
// the same script text and never shares it.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/valter-silva-au/disco/pkg/models"
	lua "github.com/yuin/gopher-lua"
)

// DefaultMaxIndirection bounds how many zero-argument functions are called in
// a row while classifying a single field.
const DefaultMaxIndirection = 8

// Options configures a new Environment.
type Options struct {
	// MaxIndirection limits function-call indirection during classification.
	// Zero means DefaultMaxIndirection.
	MaxIndirection int

	// ChunkName is used in Lua error messages, usually the config file path.
	ChunkName string

	// Version is exposed to scripts as disco.version.
	Version string
}

// Environment is one loaded instance of the configuration script.
type Environment struct {
	L              *lua.LState
	ctx            context.Context
	maxIndirection int
	version        string
	procs          *processSet
}

// NewEnvironment creates a fresh interpreter bound to ctx, installs the
// builtin library and executes source. Running Lua code is aborted and any
// subprocess started by the script is killed once ctx is done.
func NewEnvironment(ctx context.Context, source string, opts Options) (*Environment, error) {
	if opts.MaxIndirection <= 0 {
		opts.MaxIndirection = DefaultMaxIndirection
	}
	if opts.ChunkName == "" {
		opts.ChunkName = "config"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	L := lua.NewState()
	L.SetContext(ctx)

	env := &Environment{
		L:              L,
		ctx:            ctx,
		maxIndirection: opts.MaxIndirection,
		version:        opts.Version,
		procs:          newProcessSet(),
	}

	if err := env.openLibrary(); err != nil {
		env.Close()
		return nil, &models.ScriptLoadError{Err: fmt.Errorf("installing builtin library: %w", err)}
	}

	fn, err := L.Load(strings.NewReader(source), opts.ChunkName)
	if err != nil {
		env.Close()
		return nil, &models.ScriptLoadError{Err: err}
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		env.Close()
		return nil, &models.ScriptLoadError{Err: err}
	}
	L.SetTop(0)

	return env, nil
}

// Global returns the script global named name, or lua.LNil.
func (e *Environment) Global(name string) lua.LValue {
	return e.L.GetGlobal(name)
}

// maxExactInteger is the largest integer a Lua number holds exactly.
const maxExactInteger = 1 << 53

// ApplicationID returns the ApplicationID global rendered as a string, or ""
// when the script does not set it. Numbers are accepted only while they are
// exact; larger identifiers have to be written as strings.
func (e *Environment) ApplicationID() (string, error) {
	switch v := e.Global("ApplicationID").(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		n, ok := integral(v)
		if !ok || n <= 0 || n > maxExactInteger {
			return "", fmt.Errorf("ApplicationID %v cannot be represented exactly, quote it as a string", v)
		}
		return fmt.Sprintf("%d", n), nil
	default:
		return "", fmt.Errorf("ApplicationID must be a string, got %s", v.Type())
	}
}

// call invokes fn with no arguments in protected mode and returns its first
// result.
func (e *Environment) call(fn *lua.LFunction) (lua.LValue, error) {
	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return lua.LNil, err
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	return ret, nil
}

// Close kills subprocesses started by the script and releases the
// interpreter. It must be called from the goroutine that owns e.
func (e *Environment) Close() error {
	e.procs.killAll()
	e.L.Close()
	return nil
}
