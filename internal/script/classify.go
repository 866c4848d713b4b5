package script

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/valter-silva-au/disco/pkg/models"
	lua "github.com/yuin/gopher-lua"
)

// Resolve classifies the script global bound to field. A missing global
// yields a FieldResolutionError wrapping models.ErrFieldUndefined.
func (e *Environment) Resolve(field models.FieldTag) (*models.Strategy, error) {
	value := e.Global(string(field))
	if value == lua.LNil {
		return nil, &models.FieldResolutionError{Field: field, Err: models.ErrFieldUndefined}
	}
	strategy, err := e.Classify(field, value)
	if err != nil {
		return nil, &models.FieldResolutionError{Field: field, Err: err}
	}
	return strategy, nil
}

// Classify decides the update strategy for value. The first matching rule
// wins:
//
//  1. a table whose first slot is a number polls the function in its second
//     slot every that many seconds;
//  2. a coroutine is listened to; a zero-argument function is called and its
//     result classified again, at most MaxIndirection times;
//  3. anything else is decoded as a static value.
func (e *Environment) Classify(field models.FieldTag, value lua.LValue) (*models.Strategy, error) {
	for depth := 0; ; depth++ {
		switch v := value.(type) {
		case *lua.LTable:
			if n, ok := v.RawGetInt(1).(lua.LNumber); ok {
				return e.pollStrategy(field, n, v.RawGetInt(2))
			}
		case *lua.LState:
			return &models.Strategy{
				Kind:   models.StrategyListen,
				Stream: &coroutineSequence{env: e, field: field, co: v},
			}, nil
		case *lua.LFunction:
			if depth >= e.maxIndirection {
				return nil, fmt.Errorf("more than %d levels of function indirection", e.maxIndirection)
			}
			if err := checkNoParams(v); err != nil {
				return nil, err
			}
			result, err := e.call(v)
			if err != nil {
				return nil, fmt.Errorf("calling %s: %w", field, err)
			}
			value = result
			continue
		}

		decoded, err := Decode(field, value)
		if err != nil {
			return nil, err
		}
		return &models.Strategy{Kind: models.StrategyStatic, Value: decoded}, nil
	}
}

func (e *Environment) pollStrategy(field models.FieldTag, rate lua.LNumber, accessor lua.LValue) (*models.Strategy, error) {
	seconds, ok := integral(rate)
	if !ok || seconds < 1 {
		return nil, fmt.Errorf("poll interval must be a positive whole number of seconds, got %v", rate)
	}
	if seconds > maxIntervalSeconds {
		return nil, fmt.Errorf("poll interval %d seconds is longer than the maximum of %d", seconds, maxIntervalSeconds)
	}
	fn, ok := accessor.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("poll accessor must be a function, got %s", accessor.Type())
	}
	if err := checkNoParams(fn); err != nil {
		return nil, err
	}

	return &models.Strategy{
		Kind:     models.StrategyPoll,
		Interval: time.Duration(seconds) * time.Second,
		Fetch: func() (models.FieldValue, error) {
			result, err := e.call(fn)
			if err != nil {
				return nil, err
			}
			return Decode(field, result)
		},
	}, nil
}

// maxIntervalSeconds is the longest poll interval a time.Duration can hold.
const maxIntervalSeconds = math.MaxInt64 / int64(time.Second)

var errTakesArguments = errors.New("function must take no arguments")

func checkNoParams(fn *lua.LFunction) error {
	if fn.IsG || fn.Proto == nil {
		return nil
	}
	if fn.Proto.NumParameters > 0 {
		return fmt.Errorf("%w (declares %d)", errTakesArguments, fn.Proto.NumParameters)
	}
	return nil
}
