package mpv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tr1v3r/pkg/log"

	"github.com/tr1v3r/mpvc/internal/monitoring"
)

// Conn is one connection to mpv's JSON IPC socket.
//
// A Conn is not safe for concurrent use. Commands and events share the
// socket: events arriving while a command waits for its reply are queued
// and handed out by Listen in arrival order.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	path   string
	id     string

	requestIDCount int64
	pending        []Event
	// partial holds the bytes of a line cut short by a deadline
	partial string

	metrics   *monitoring.Metrics
	closeOnce sync.Once
	closeErr  error
}

// Connect dials the unix socket at path.
func Connect(path string) (*Conn, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: mpv ipc socket path is empty", ErrConnect)
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	c := newConn(conn, path)
	log.Debug("[%s] connected to mpv ipc socket %s", c.id, path)
	return c, nil
}

func newConn(conn net.Conn, path string) *Conn {
	return &Conn{
		conn:           conn,
		reader:         bufio.NewReader(conn),
		path:           path,
		id:             uuid.NewString(),
		requestIDCount: -1,
		metrics:        monitoring.New(),
	}
}

// Path returns the socket path the connection was opened with.
func (c *Conn) Path() string { return c.path }

// Metrics returns the connection's traffic counters.
func (c *Conn) Metrics() *monitoring.Metrics { return c.metrics }

func (c *Conn) String() string { return fmt.Sprintf("mpv.Conn(%s)", c.path) }

// Close shuts down both directions of the socket and closes it. Calling
// Close more than once is a no-op.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if uc, ok := c.conn.(*net.UnixConn); ok {
			_ = uc.CloseRead()
			_ = uc.CloseWrite()
		}
		if err := c.conn.Close(); err != nil {
			c.closeErr = fmt.Errorf("closing mpv ipc socket fail: %w", err)
		}
		c.metrics.LogMetrics(context.Background())
		log.Debug("[%s] disconnected from %s", c.id, c.path)
	})
	return c.closeErr
}

// withDeadline applies the context deadline to the socket until the
// returned func is called. Cancelling ctx expires the socket deadline, so
// a blocked read or write returns at once.
func (c *Conn) withDeadline(ctx context.Context) func() {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(dl)
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
		close(fired)
	})
	return func() {
		if !stop() {
			<-fired
		}
		_ = c.conn.SetDeadline(time.Time{})
	}
}

func (c *Conn) writeLine(ctx context.Context, data []byte) error {
	log.CtxDebug(ctx, "[%s] command: %s", c.id, data)

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func (c *Conn) readLine(ctx context.Context) (string, error) {
	line, err := c.reader.ReadString('\n')
	line, c.partial = c.partial+line, ""
	if err != nil {
		// a final unterminated line is still a line
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimRight(line, " \t\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %w", ErrRead, io.EOF)
		}
		// keep what arrived so the next read completes the line
		c.partial = line
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	line = strings.TrimRight(line, " \t\r\n")
	log.CtxDebug(ctx, "[%s] received: %s", c.id, line)
	return line, nil
}
