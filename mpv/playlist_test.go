package mpv

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testPlaylist = `[{"filename":"a.mp3","id":1},` +
	`{"filename":"b.mp3","id":2,"current":true,"playing":true,"title":"Bee"},` +
	`{"filename":"c.mp3","id":3},{"filename":"d.mp3","id":4}]`

func TestPlaylist(t *testing.T) {
	c, f := newFakeMPV(t)
	f.answer(1, map[string]string{"playlist": testPlaylist})

	entries, err := c.Playlist(testContext(t))
	if err != nil {
		t.Fatalf("Playlist: %v", err)
	}
	want := []PlaylistEntry{
		{Filename: "a.mp3", ID: 1},
		{Filename: "b.mp3", ID: 2, Current: true, Playing: true, Title: "Bee"},
		{Filename: "c.mp3", ID: 3},
		{Filename: "d.mp3", ID: 4},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("playlist mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayNext(t *testing.T) {
	c, f := newFakeMPV(t)
	cmds := f.answer(2, map[string]string{"playlist": testPlaylist})

	if err := c.PlayNext(testContext(t), 3); err != nil {
		t.Fatalf("PlayNext: %v", err)
	}

	want := [][]any{
		{"get_property", "playlist"},
		{"playlist-move", float64(3), float64(2)},
	}
	if diff := cmp.Diff(want, received(t, cmds, 2)); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayNext_NothingPlaying(t *testing.T) {
	c, f := newFakeMPV(t)
	f.answer(1, map[string]string{"playlist": `[{"filename":"a.mp3"},{"filename":"b.mp3"}]`})

	if err := c.PlayNext(testContext(t), 1); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("err = %v, want ErrNotPlaying", err)
	}
}

func TestPlaylistCommands(t *testing.T) {
	c, f := newFakeMPV(t)
	ctx := testContext(t)
	cmds := f.answer(6, nil)

	steps := []func() error{
		func() error { return c.LoadFile(ctx, "/music/a.flac", LoadAppendPlay) },
		func() error { return c.PlaylistClear(ctx) },
		func() error { return c.PlaylistShuffle(ctx) },
		func() error { return c.PlaylistRemove(ctx, 2) },
		func() error { return c.PlaylistMove(ctx, 0, 3) },
		func() error { return c.PlayIndex(ctx, 1) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := [][]any{
		{"loadfile", "/music/a.flac", "append-play"},
		{"playlist-clear"},
		{"playlist-shuffle"},
		{"playlist-remove", float64(2)},
		{"playlist-move", float64(0), float64(3)},
		{"set_property", "playlist-pos", float64(1)},
	}
	if diff := cmp.Diff(want, received(t, cmds, len(want))); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLoadMode(t *testing.T) {
	for _, s := range []string{"replace", "append", "append-play"} {
		if m, err := ParseLoadMode(s); err != nil || string(m) != s {
			t.Errorf("ParseLoadMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseLoadMode("insert"); err == nil {
		t.Error("ParseLoadMode(insert) succeeded")
	}
}
