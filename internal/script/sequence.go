package script

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/disco/pkg/models"
	lua "github.com/yuin/gopher-lua"
)

// coroutineSequence adapts a Lua coroutine to models.Sequence. It is
// single-pass: once the coroutine is dead it stays done.
type coroutineSequence struct {
	env   *Environment
	field models.FieldTag
	co    *lua.LState
	done  bool
}

// Next resumes the coroutine once. A yielded value is decoded for the field.
// Returning from the coroutine body, or yielding nil, finishes the sequence.
func (s *coroutineSequence) Next() (models.FieldValue, bool, error) {
	if s.done {
		return nil, false, nil
	}

	value, finished, err := s.env.resume(s.co)
	if err != nil {
		s.done = true
		return nil, false, err
	}
	if finished || value == lua.LNil {
		s.done = true
		return nil, false, nil
	}

	decoded, err := Decode(s.field, value)
	if err != nil {
		s.done = true
		return nil, false, err
	}
	return decoded, true, nil
}

// resume runs coroutine.resume(co) and reports the first yielded value and
// whether the coroutine has finished.
func (e *Environment) resume(co *lua.LState) (lua.LValue, bool, error) {
	lib := e.L.GetGlobal("coroutine")
	resumeFn, ok := e.L.GetField(lib, "resume").(*lua.LFunction)
	if !ok {
		return lua.LNil, true, errors.New("coroutine library not available")
	}
	statusFn, ok := e.L.GetField(lib, "status").(*lua.LFunction)
	if !ok {
		return lua.LNil, true, errors.New("coroutine library not available")
	}

	if err := e.L.CallByParam(lua.P{Fn: resumeFn, NRet: 2, Protect: true}, co); err != nil {
		return lua.LNil, true, err
	}
	resumed := lua.LVAsBool(e.L.Get(-2))
	value := e.L.Get(-1)
	e.L.Pop(2)
	if !resumed {
		return lua.LNil, true, fmt.Errorf("resuming coroutine: %s", value.String())
	}

	if err := e.L.CallByParam(lua.P{Fn: statusFn, NRet: 1, Protect: true}, co); err != nil {
		return lua.LNil, true, err
	}
	status := e.L.Get(-1)
	e.L.Pop(1)

	return value, lua.LVAsString(status) == "dead", nil
}
