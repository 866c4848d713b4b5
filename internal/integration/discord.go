// Package integration provides the presence clients: the Discord desktop IPC
// client and a dry-run client that only logs.
package integration

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/valter-silva-au/disco/pkg/models"
)

// Opcodes of the Discord local IPC framing.
const (
	opHandshake uint32 = 0
	opFrame     uint32 = 1
	opClose     uint32 = 2
	opPing      uint32 = 3
	opPong      uint32 = 4
)

// maxFrameSize bounds the payload of a single IPC frame.
const maxFrameSize = 1 << 20

// ErrNotConnected is returned by requests made before Connect succeeded or
// after the connection was lost.
var ErrNotConnected = errors.New("not connected to Discord")

// ipcMessage is the JSON body of a frame in either direction.
type ipcMessage struct {
	Cmd   string          `json:"cmd,omitempty"`
	Evt   string          `json:"evt,omitempty"`
	Nonce string          `json:"nonce,omitempty"`
	Args  any             `json:"args,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type handshake struct {
	Version  int    `json:"v"`
	ClientID string `json:"client_id"`
}

type activityArgs struct {
	PID      int              `json:"pid"`
	Activity *models.Activity `json:"activity,omitempty"`
}

type ipcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DiscordClient publishes rich presence to a running Discord desktop client
// over its local IPC socket. It is safe for concurrent use.
type DiscordClient struct {
	appID    string
	pid      int
	dial     func() (io.ReadWriteCloser, error)
	newNonce func() string

	mu   sync.Mutex
	conn io.ReadWriteCloser
}

// NewDiscordClient creates an unconnected client for the given application id.
func NewDiscordClient(appID string) *DiscordClient {
	return &DiscordClient{
		appID:    appID,
		pid:      os.Getpid(),
		dial:     dialIPC,
		newNonce: func() string { return uuid.NewString() },
	}
}

// Connect opens the IPC socket and performs the handshake. It is a no-op
// when already connected.
func (c *DiscordClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	return c.connectLocked()
}

// Reconnect drops the current connection, if any, and connects again.
func (c *DiscordClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
	return c.connectLocked()
}

// SetActivity replaces the displayed presence with activity.
func (c *DiscordClient) SetActivity(activity models.Activity) error {
	return c.request("SET_ACTIVITY", activityArgs{PID: c.pid, Activity: &activity})
}

// ClearActivity removes the displayed presence.
func (c *DiscordClient) ClearActivity() error {
	return c.request("SET_ACTIVITY", activityArgs{PID: c.pid})
}

// Close closes the connection. The client can be connected again later.
func (c *DiscordClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *DiscordClient) connectLocked() error {
	conn, err := c.dial()
	if err != nil {
		return fmt.Errorf("opening Discord IPC socket: %w", err)
	}

	body, err := json.Marshal(handshake{Version: 1, ClientID: c.appID})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("encoding handshake: %w", err)
	}
	if err := writeFrame(conn, opHandshake, body); err != nil {
		_ = conn.Close()
		return fmt.Errorf("sending handshake: %w", err)
	}

	c.conn = conn
	for {
		msg, err := c.readMessageLocked()
		if err != nil {
			c.dropLocked()
			return fmt.Errorf("waiting for READY: %w", err)
		}
		if msg.Evt == "READY" {
			return nil
		}
		if msg.Evt == "ERROR" {
			c.dropLocked()
			return fmt.Errorf("handshake rejected: %w", decodeIPCError(msg.Data))
		}
	}
}

// request sends one command and waits for the response carrying its nonce.
func (c *DiscordClient) request(cmd string, args any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}

	nonce := c.newNonce()
	body, err := json.Marshal(ipcMessage{Cmd: cmd, Args: args, Nonce: nonce})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", cmd, err)
	}
	if err := writeFrame(c.conn, opFrame, body); err != nil {
		c.dropLocked()
		return fmt.Errorf("sending %s: %w", cmd, err)
	}

	for {
		msg, err := c.readMessageLocked()
		if err != nil {
			c.dropLocked()
			return fmt.Errorf("reading %s response: %w", cmd, err)
		}
		if msg.Nonce != nonce {
			continue
		}
		if msg.Evt == "ERROR" {
			return fmt.Errorf("%s: %w", cmd, decodeIPCError(msg.Data))
		}
		return nil
	}
}

// readMessageLocked reads frames until a FRAME message arrives, answering
// pings on the way. A CLOSE frame is returned as an error.
func (c *DiscordClient) readMessageLocked() (*ipcMessage, error) {
	for {
		op, body, err := readFrame(c.conn)
		if err != nil {
			return nil, err
		}
		switch op {
		case opPing:
			if err := writeFrame(c.conn, opPong, body); err != nil {
				return nil, err
			}
		case opPong:
		case opClose:
			return nil, fmt.Errorf("closed by Discord: %w", decodeIPCError(body))
		case opFrame:
			var msg ipcMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return nil, fmt.Errorf("decoding frame: %w", err)
			}
			return &msg, nil
		default:
			return nil, fmt.Errorf("unexpected opcode %d", op)
		}
	}
}

func (c *DiscordClient) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func decodeIPCError(data []byte) error {
	var e ipcError
	if len(data) == 0 || json.Unmarshal(data, &e) != nil {
		return errors.New("unknown error")
	}
	return fmt.Errorf("%s (code %d)", e.Message, e.Code)
}

// writeFrame writes an 8-byte little-endian header (opcode, length) followed
// by body.
func writeFrame(w io.Writer, op uint32, body []byte) error {
	buf := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], op)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[8:], body)
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) (uint32, []byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}
	op := binary.LittleEndian.Uint32(header[0:4])
	size := binary.LittleEndian.Uint32(header[4:8])
	if size > maxFrameSize {
		return 0, nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return op, body, nil
}
