package mpv

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoadMode tells loadfile where a file goes in the playlist.
type LoadMode string

const (
	LoadReplace    LoadMode = "replace"
	LoadAppend     LoadMode = "append"
	LoadAppendPlay LoadMode = "append-play"
)

// ParseLoadMode accepts the loadfile flag names.
func ParseLoadMode(s string) (LoadMode, error) {
	switch m := LoadMode(s); m {
	case LoadReplace, LoadAppend, LoadAppendPlay:
		return m, nil
	default:
		return "", fmt.Errorf("unknown load mode %q, want replace, append or append-play", s)
	}
}

// PlaylistEntry is one element of the playlist property.
type PlaylistEntry struct {
	Filename string `json:"filename"`
	Title    string `json:"title,omitempty"`
	ID       int64  `json:"id,omitempty"`
	Current  bool   `json:"current,omitempty"`
	Playing  bool   `json:"playing,omitempty"`
}

// Playlist returns the playlist in order; an entry's index is its position.
func (c *Conn) Playlist(ctx context.Context) ([]PlaylistEntry, error) {
	val, err := c.GetProperty(ctx, "playlist")
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, fmt.Errorf("%w: playlist", ErrMissingValue)
	}

	data, err := json.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedValue, err)
	}
	var entries []PlaylistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: playlist: %w", ErrUnexpectedValue, err)
	}
	return entries, nil
}

// LoadFile adds path to the playlist.
func (c *Conn) LoadFile(ctx context.Context, path string, mode LoadMode) error {
	return c.Command(ctx, "loadfile", path, string(mode))
}

func (c *Conn) PlaylistClear(ctx context.Context) error {
	return c.Command(ctx, "playlist-clear")
}

func (c *Conn) PlaylistShuffle(ctx context.Context) error {
	return c.Command(ctx, "playlist-shuffle")
}

// PlaylistRemove removes the entry at index.
func (c *Conn) PlaylistRemove(ctx context.Context, index int) error {
	if _, err := c.Execute(ctx, []any{"playlist-remove", index}); err != nil {
		return fmt.Errorf("removing playlist entry %d failed: %w", index, err)
	}
	return nil
}

// PlaylistMove moves the entry at from so that it takes the place of the
// entry at to.
func (c *Conn) PlaylistMove(ctx context.Context, from, to int) error {
	if _, err := c.Execute(ctx, []any{"playlist-move", from, to}); err != nil {
		return fmt.Errorf("moving playlist entry %d to %d failed: %w", from, to, err)
	}
	return nil
}

// PlayIndex starts playing the entry at index.
func (c *Conn) PlayIndex(ctx context.Context, index int) error {
	return c.SetProperty(ctx, "playlist-pos", index)
}

// PlayNext moves the entry at index right after the current one, so it
// plays next. ErrNotPlaying is returned when nothing is current.
func (c *Conn) PlayNext(ctx context.Context, index int) error {
	entries, err := c.Playlist(ctx)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.Current {
			return c.PlaylistMove(ctx, index, i+1)
		}
	}
	return ErrNotPlaying
}
