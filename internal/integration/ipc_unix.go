//go:build !windows

package integration

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

// ipcSubdirs are the locations sandboxed Discord builds put their socket in,
// relative to the runtime directory.
var ipcSubdirs = []string{
	"",
	"app/com.discordapp.Discord",
	"snap.discord",
	".flatpak/com.discordapp.Discord/xdg-run",
}

// ipcCandidates lists every socket path to try, in order.
func ipcCandidates() []string {
	var bases []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			bases = append(bases, dir)
		}
	}
	bases = append(bases, "/tmp")

	var paths []string
	for _, base := range bases {
		for _, sub := range ipcSubdirs {
			for i := 0; i < 10; i++ {
				paths = append(paths, filepath.Join(base, sub, fmt.Sprintf("discord-ipc-%d", i)))
			}
		}
	}
	return paths
}

func dialIPC() (io.ReadWriteCloser, error) {
	for _, path := range ipcCandidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		conn, err := net.Dial("unix", path)
		if err == nil {
			return conn, nil
		}
	}
	return nil, errors.New("no Discord IPC socket found, is Discord running?")
}
