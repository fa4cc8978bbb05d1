package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeMPV is the server end of a net.Pipe standing in for mpv.
type fakeMPV struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func newFakeMPV(t *testing.T) (*Conn, *fakeMPV) {
	t.Helper()

	client, server := net.Pipe()
	c := newConn(client, "pipe")
	f := &fakeMPV{t: t, conn: server, reader: bufio.NewReader(server)}
	t.Cleanup(func() {
		_ = c.Close()
		_ = server.Close()
	})
	return c, f
}

// readRequest reads one command line. Safe to call from a goroutine.
func (f *fakeMPV) readRequest() (Request, bool) {
	line, err := f.reader.ReadBytes('\n')
	if err != nil {
		f.t.Errorf("fake mpv: reading request: %v", err)
		return Request{}, false
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		f.t.Errorf("fake mpv: decoding request %q: %v", line, err)
		return Request{}, false
	}
	return req, true
}

func (f *fakeMPV) send(lines ...string) {
	for _, l := range lines {
		if _, err := f.conn.Write([]byte(l + "\n")); err != nil {
			f.t.Errorf("fake mpv: writing %q: %v", l, err)
			return
		}
	}
}

// answer serves n requests in the background. get_property for a name in
// props is answered with that raw JSON, everything else with plain
// success. The received commands are forwarded in order.
func (f *fakeMPV) answer(n int, props map[string]string) <-chan []any {
	cmds := make(chan []any, n)
	go func() {
		for range n {
			req, ok := f.readRequest()
			if !ok {
				return
			}
			cmds <- req.Command

			reply := fmt.Sprintf(`{"request_id":%d,"error":"success"}`, req.RequestID)
			if len(req.Command) == 2 && req.Command[0] == "get_property" {
				name, _ := req.Command[1].(string)
				if data, ok := props[name]; ok {
					reply = fmt.Sprintf(`{"request_id":%d,"error":"success","data":%s}`, req.RequestID, data)
				}
			}
			f.send(reply)
		}
	}()
	return cmds
}

// received collects n commands from cmds.
func received(t *testing.T, cmds <-chan []any, n int) [][]any {
	t.Helper()

	var got [][]any
	for range n {
		select {
		case cmd := <-cmds:
			got = append(got, cmd)
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d commands", len(got), n)
		}
	}
	return got
}

// tempSocketPath returns a short path; unix socket paths are length limited.
func tempSocketPath(t *testing.T) string {
	t.Helper()

	path := filepath.Join(os.TempDir(), "mpvc-test-"+uuid.NewString()[:8]+".sock")
	t.Cleanup(func() { _ = os.Remove(path) })
	return path
}
