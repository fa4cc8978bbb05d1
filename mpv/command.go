package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tr1v3r/pkg/log"
)

// readMessage reads the next line and decodes it as a JSON object. Both
// Execute and Listen go through it. Numbers are kept as json.Number so
// large integers survive.
func (c *Conn) readMessage(ctx context.Context) (map[string]any, error) {
	line, err := c.readLine(ctx)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object: %s", ErrJSON, line)
	}
	msg, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedValue, line)
	}
	return msg, nil
}

// Execute sends command and blocks until the reply carrying the same
// request id arrives. Events read in the meantime are queued for Listen;
// replies to other ids and unrecognised objects are dropped.
//
// On success the reply's data is returned, or nil if it has none. A
// non-success reply is returned as *MpvError.
func (c *Conn) Execute(ctx context.Context, command []any) (data any, err error) {
	defer c.withDeadline(ctx)()

	start := time.Now()
	defer func() { c.metrics.RecordCommand(time.Since(start), err) }()

	c.requestIDCount++
	id := c.requestIDCount

	req, err := json.Marshal(Request{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedValue, err)
	}
	if err := c.writeLine(ctx, req); err != nil {
		return nil, err
	}

	for {
		msg, err := c.readMessage(ctx)
		if err != nil {
			return nil, err
		}

		if rid, ok := msg["request_id"]; ok {
			if n, isNum := rid.(json.Number); !isNum || !sameID(n, id) {
				log.CtxDebug(ctx, "[%s] dropping reply for request %v, waiting for %d", c.id, rid, id)
				c.metrics.RecordDiscard()
				continue
			}
		} else {
			if isEvent(msg) {
				c.pending = append(c.pending, Event(msg))
				c.metrics.RecordEventQueued()
			} else {
				log.CtxDebug(ctx, "[%s] dropping unrecognised message: %v", c.id, msg)
				c.metrics.RecordDiscard()
			}
			continue
		}

		status, ok := msg["error"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: reply %d has no error field", ErrUnexpectedValue, id)
		}
		if status != successReply {
			return nil, &MpvError{Message: status}
		}
		return msg["data"], nil
	}
}

func sameID(n json.Number, id int64) bool {
	got, err := n.Int64()
	return err == nil && got == id
}

// Command runs a command with string arguments and discards its result.
func (c *Conn) Command(ctx context.Context, name string, args ...string) error {
	cmd := make([]any, 0, len(args)+1)
	cmd = append(cmd, name)
	for _, arg := range args {
		cmd = append(cmd, arg)
	}
	if _, err := c.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("calling mpv %s failed: %w", name, err)
	}
	return nil
}

// GetProperty returns the raw JSON value of a property.
func (c *Conn) GetProperty(ctx context.Context, name string) (any, error) {
	return c.Execute(ctx, []any{"get_property", name})
}

// GetPropertyString returns a property rendered as text, see Stringify.
func (c *Conn) GetPropertyString(ctx context.Context, name string) (string, error) {
	val, err := c.GetProperty(ctx, name)
	if err != nil {
		return "", err
	}
	return Stringify(val)
}

func (c *Conn) GetBool(ctx context.Context, name string) (bool, error) {
	val, err := c.GetProperty(ctx, name)
	if err != nil {
		return false, err
	}
	switch v := val.(type) {
	case nil:
		return false, fmt.Errorf("%w: %s", ErrMissingValue, name)
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("%w: unexpected type for %s: %T", ErrUnexpectedValue, name, val)
	}
}

func (c *Conn) GetFloat(ctx context.Context, name string) (float64, error) {
	val, err := c.GetProperty(ctx, name)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, name)
	}
	f, ok := Float(val)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected type for %s: %T", ErrUnexpectedValue, name, val)
	}
	return f, nil
}

func (c *Conn) GetString(ctx context.Context, name string) (string, error) {
	val, err := c.GetProperty(ctx, name)
	if err != nil {
		return "", err
	}
	switch v := val.(type) {
	case nil:
		return "", fmt.Errorf("%w: %s", ErrMissingValue, name)
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unexpected type for %s: %T", ErrUnexpectedValue, name, val)
	}
}

// GetMetadata returns the metadata of the current file with lower-cased keys.
func (c *Conn) GetMetadata(ctx context.Context) (map[string]any, error) {
	val, err := c.GetProperty(ctx, "metadata")
	if err != nil {
		return nil, err
	}
	m, ok := val.(map[string]any)
	if !ok {
		if val == nil {
			return nil, fmt.Errorf("%w: metadata", ErrMissingValue)
		}
		return nil, fmt.Errorf("%w: unexpected type for metadata: %T", ErrUnexpectedValue, val)
	}

	metadata := make(map[string]any, len(m))
	for k, v := range m {
		metadata[strings.ToLower(k)] = v
	}
	return metadata, nil
}

func (c *Conn) SetProperty(ctx context.Context, name string, value any) error {
	if _, err := c.Execute(ctx, []any{"set_property", name, value}); err != nil {
		return fmt.Errorf("setting mpv property %s failed: %w", name, err)
	}
	return nil
}

// AddProperty adds delta to a numeric property.
func (c *Conn) AddProperty(ctx context.Context, name string, delta float64) error {
	if _, err := c.Execute(ctx, []any{"add", name, delta}); err != nil {
		return fmt.Errorf("adding to mpv property %s failed: %w", name, err)
	}
	return nil
}

// ObserveProperty asks mpv to send property-change events for name, tagged
// with id.
func (c *Conn) ObserveProperty(ctx context.Context, id int, name string) error {
	if _, err := c.Execute(ctx, []any{"observe_property", id, name}); err != nil {
		return fmt.Errorf("observing mpv property %s failed: %w", name, err)
	}
	return nil
}

func (c *Conn) UnobserveProperty(ctx context.Context, id int) error {
	if _, err := c.Execute(ctx, []any{"unobserve_property", id}); err != nil {
		return fmt.Errorf("unobserving mpv property %d failed: %w", id, err)
	}
	return nil
}
