package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestListen_SkipsNonEvents(t *testing.T) {
	c, f := newFakeMPV(t)
	ctx := testContext(t)

	go f.send(
		`{"request_id":3,"error":"success"}`,
		`{"data":1}`,
		`{"event":"seek"}`,
	)

	e, err := c.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if e.Name() != "seek" {
		t.Errorf("Name() = %q, want seek", e.Name())
	}
}

func TestListen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "garbage", line: `not json`, wantErr: ErrJSON},
		{name: "array", line: `["event"]`, wantErr: ErrUnexpectedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, f := newFakeMPV(t)
			go f.send(tt.line)

			if _, err := c.Listen(testContext(t)); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListen_EOF(t *testing.T) {
	c, f := newFakeMPV(t)
	_ = f.conn.Close()

	_, err := c.Listen(testContext(t))
	if !errors.Is(err, ErrRead) || !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want ErrRead wrapping io.EOF", err)
	}
}

func TestListenRaw(t *testing.T) {
	c, f := newFakeMPV(t)
	ctx := testContext(t)

	go f.send(`{"event":"idle"}  `, `garbage that is not json`)

	for _, want := range []string{`{"event":"idle"}`, `garbage that is not json`} {
		got, err := c.ListenRaw(ctx)
		if err != nil {
			t.Fatalf("ListenRaw: %v", err)
		}
		if got != want {
			t.Errorf("ListenRaw = %q, want %q", got, want)
		}
	}
}

func TestWaitForEvent(t *testing.T) {
	c, f := newFakeMPV(t)

	go f.send(
		`{"event":"start-file"}`,
		`{"event":"property-change","id":2,"name":"volume","data":55}`,
		`{"event":"end-file","reason":"eof"}`,
	)

	e, err := c.WaitForEvent(testContext(t), "end-file")
	if err != nil {
		t.Fatalf("WaitForEvent: %v", err)
	}
	if e["reason"] != "eof" {
		t.Errorf("reason = %v, want eof", e["reason"])
	}
}

func TestEventPropertyChange(t *testing.T) {
	e := Event{"event": "property-change", "id": json.Number("1"), "name": "pause", "data": true}
	name, data, ok := e.PropertyChange()
	if !ok || name != "pause" || data != true {
		t.Errorf("PropertyChange() = %q, %v, %v", name, data, ok)
	}

	if _, _, ok := (Event{"event": "pause"}).PropertyChange(); ok {
		t.Error("PropertyChange() ok for a non property-change event")
	}
}

func TestListen_Cancel(t *testing.T) {
	c, _ := newFakeMPV(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := c.Listen(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrRead) || !errors.Is(err, os.ErrDeadlineExceeded) {
			t.Fatalf("err = %v, want ErrRead wrapping a deadline error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestListen_CancelLeavesConnUsable(t *testing.T) {
	c, f := newFakeMPV(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Listen(ctx); !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}

	go f.send(`{"event":"idle"}`)
	e, err := c.Listen(testContext(t))
	if err != nil {
		t.Fatalf("Listen after cancel: %v", err)
	}
	if e.Name() != "idle" {
		t.Errorf("Name() = %q, want idle", e.Name())
	}
}

func TestListenRaw_LeavesQueuedEvents(t *testing.T) {
	c, f := newFakeMPV(t)
	ctx := testContext(t)

	go func() {
		if _, ok := f.readRequest(); !ok {
			return
		}
		f.send(
			`{"event":"start-file"}`,
			`{"request_id":0,"error":"success"}`,
			`{"event":"file-loaded"}`,
		)
	}()

	if _, err := c.Execute(ctx, []any{"loadfile", "a.mp3"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}

	line, err := c.ListenRaw(ctx)
	if err != nil {
		t.Fatalf("ListenRaw: %v", err)
	}
	if line != `{"event":"file-loaded"}` {
		t.Errorf("ListenRaw = %q, want the next line on the socket", line)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d after ListenRaw, want 1", c.Pending())
	}

	e, err := c.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if diff := cmp.Diff(Event{"event": "start-file"}, e); diff != "" {
		t.Errorf("queued event mismatch (-want +got):\n%s", diff)
	}
}
