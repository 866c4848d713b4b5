package script

import (
	"bufio"
	"context"
	"os/exec"
	"runtime"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// maxLineSize bounds a single line read from a watched command.
const maxLineSize = 1024 * 1024

// waitDelay bounds how long reaping a killed command may wait for its
// children to release stdout.
const waitDelay = 2 * time.Second

// prelude defines the Lua half of the builtin library. watch returns a
// coroutine that starts the command on first resume and yields one line per
// resume. A transform returning nil skips the line.
const prelude = `
function disco.watch(command, transform)
	return coroutine.create(function()
		for line in disco.lines(command) do
			if transform then
				line = transform(line)
			end
			if line ~= nil then
				coroutine.yield(line)
			end
		end
	end)
end

watch = disco.watch
`

// openLibrary installs the disco module and the global watch helper.
func (e *Environment) openLibrary() error {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"lines": e.luaLines,
	})
	mod.RawSetString("version", lua.LString(e.version))
	e.L.SetGlobal("disco", mod)
	return e.L.DoString(prelude)
}

// luaLines implements disco.lines(command). It starts command through the
// system shell and returns an iterator over its stdout lines.
func (e *Environment) luaLines(L *lua.LState) int {
	command := L.CheckString(1)

	cmd := shellCommand(e.ctx, command)
	cmd.WaitDelay = waitDelay
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		L.RaiseError("disco.lines: %v", err)
		return 0
	}
	if err := cmd.Start(); err != nil {
		L.RaiseError("disco.lines: starting %q: %v", command, err)
		return 0
	}
	e.procs.add(cmd)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	finished := false

	L.Push(L.NewFunction(func(L *lua.LState) int {
		if !finished && scanner.Scan() {
			L.Push(lua.LString(scanner.Text()))
			return 1
		}
		if !finished {
			finished = true
			if scanner.Err() != nil && cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			_ = cmd.Wait()
			e.procs.remove(cmd)
		}
		L.Push(lua.LNil)
		return 1
	}))
	return 1
}

// shellCommand delegates command to sh -c, or cmd /c on Windows.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/c", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// processSet tracks subprocesses that are still running so Close can reap
// them.
type processSet struct {
	mu    sync.Mutex
	procs map[*exec.Cmd]struct{}
}

func newProcessSet() *processSet {
	return &processSet{procs: make(map[*exec.Cmd]struct{})}
}

func (s *processSet) add(cmd *exec.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs[cmd] = struct{}{}
}

func (s *processSet) remove(cmd *exec.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.procs, cmd)
}

func (s *processSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

func (s *processSet) killAll() {
	s.mu.Lock()
	procs := s.procs
	s.procs = make(map[*exec.Cmd]struct{})
	s.mu.Unlock()

	for cmd := range procs {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}
}
