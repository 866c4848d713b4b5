package script

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/disco/pkg/models"
)

func newTestEnv(t *testing.T, source string) *Environment {
	t.Helper()
	env, err := NewEnvironment(context.Background(), source, Options{ChunkName: "test.lua"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestNewEnvironment_SyntaxError(t *testing.T) {
	_, err := NewEnvironment(context.Background(), "State = ", Options{})
	require.Error(t, err)

	var loadErr *models.ScriptLoadError
	assert.True(t, errors.As(err, &loadErr), "want ScriptLoadError, got %T", err)
}

func TestNewEnvironment_RuntimeError(t *testing.T) {
	_, err := NewEnvironment(context.Background(), `error("boom")`, Options{})
	require.Error(t, err)

	var loadErr *models.ScriptLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "boom")
}

func TestNewEnvironment_DefaultOptions(t *testing.T) {
	env := newTestEnv(t, "")
	assert.Equal(t, DefaultMaxIndirection, env.maxIndirection)
}

func TestApplicationID(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    string
		wantErr bool
	}{
		{"string", `ApplicationID = "123456789012345678"`, "123456789012345678", false},
		{"small number", `ApplicationID = 123456789012345`, "123456789012345", false},
		{"missing", ``, "", false},
		{"number too large", `ApplicationID = 123456789012345678`, "", true},
		{"fractional", `ApplicationID = 1.5`, "", true},
		{"table", `ApplicationID = {}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.source)
			got, err := env.ApplicationID()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvironment_GlobalsAreIndependent(t *testing.T) {
	source := `counter = 0
State = function() counter = counter + 1; return tostring(counter) end`

	first := newTestEnv(t, source)
	second := newTestEnv(t, source)

	s1, err := first.Resolve(models.FieldState)
	require.NoError(t, err)
	s2, err := second.Resolve(models.FieldState)
	require.NoError(t, err)

	assert.Equal(t, models.Text("1"), s1.Value)
	assert.Equal(t, models.Text("1"), s2.Value)
}

func TestLibraryVersion(t *testing.T) {
	env, err := NewEnvironment(context.Background(), `State = "v" .. disco.version`, Options{Version: "1.2.3"})
	require.NoError(t, err)
	defer env.Close()

	s, err := env.Resolve(models.FieldState)
	require.NoError(t, err)
	assert.Equal(t, models.Text("v1.2.3"), s.Value)
}
