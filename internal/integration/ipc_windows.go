//go:build windows

package integration

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Microsoft/go-winio"
)

// pipeDialTimeout bounds the wait for a busy pipe instance.
const pipeDialTimeout = 2 * time.Second

func ipcCandidates() []string {
	paths := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		paths = append(paths, fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i))
	}
	return paths
}

func dialIPC() (io.ReadWriteCloser, error) {
	return dialPipes(ipcCandidates(), pipeDialTimeout)
}

// dialPipes connects to the first of paths that accepts a client.
func dialPipes(paths []string, timeout time.Duration) (io.ReadWriteCloser, error) {
	for _, path := range paths {
		conn, err := winio.DialPipe(path, &timeout)
		if err == nil {
			return conn, nil
		}
	}
	return nil, errors.New("no Discord IPC pipe found, is Discord running?")
}
