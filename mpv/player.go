package mpv

import (
	"context"
	"fmt"
)

// Switch is an on/off/toggle argument for flag properties.
type Switch int

const (
	SwitchOn Switch = iota
	SwitchOff
	SwitchToggle
)

func ParseSwitch(s string) (Switch, error) {
	switch s {
	case "on":
		return SwitchOn, nil
	case "off":
		return SwitchOff, nil
	case "toggle":
		return SwitchToggle, nil
	default:
		return 0, fmt.Errorf("unknown switch %q, want on, off or toggle", s)
	}
}

// SetMute mutes, unmutes or flips mute.
func (c *Conn) SetMute(ctx context.Context, sw Switch) error {
	enabled := sw == SwitchOn
	if sw == SwitchToggle {
		muted, err := c.GetBool(ctx, "mute")
		if err != nil {
			return err
		}
		enabled = !muted
	}
	return c.SetProperty(ctx, "mute", enabled)
}

// SetLoop switches a loop property (loop-file or loop-playlist). Loop
// counts like "inf" or 3 count as enabled.
func (c *Conn) SetLoop(ctx context.Context, name string, sw Switch) error {
	enabled := sw == SwitchOn
	if sw == SwitchToggle {
		cur, err := c.GetPropertyString(ctx, name)
		if err != nil {
			return err
		}
		enabled = cur == "false"
	}
	return c.SetProperty(ctx, name, enabled)
}

// SeekMode is the flag argument of the seek command.
type SeekMode string

const (
	SeekRelative        SeekMode = "relative"
	SeekAbsolute        SeekMode = "absolute"
	SeekRelativePercent SeekMode = "relative-percent"
	SeekAbsolutePercent SeekMode = "absolute-percent"
)

func (c *Conn) Seek(ctx context.Context, target float64, mode SeekMode) error {
	if _, err := c.Execute(ctx, []any{"seek", target, string(mode)}); err != nil {
		return fmt.Errorf("seeking to %v (%s) failed: %w", target, mode, err)
	}
	return nil
}

// Restart seeks to the start of the current file.
func (c *Conn) Restart(ctx context.Context) error {
	return c.Seek(ctx, 0, SeekAbsolute)
}

// Kill makes mpv exit.
func (c *Conn) Kill(ctx context.Context) error {
	return c.Command(ctx, "quit")
}
