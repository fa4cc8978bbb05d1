package mpv

import "errors"

var (
	ErrConnect         = errors.New("connect error")
	ErrWrite           = errors.New("write error")
	ErrRead            = errors.New("read error")
	ErrJSON            = errors.New("json parse error")
	ErrUnexpectedValue = errors.New("unexpected value received")
	ErrMissingValue    = errors.New("missing value")
)

// MpvError is a non-success reply. Message is mpv's own error text.
type MpvError struct {
	Message string
}

func (e *MpvError) Error() string { return "mpv error: " + e.Message }

// ErrNotPlaying is returned by operations that need a current playlist
// entry when there is none.
var ErrNotPlaying = errors.New("there is no file playing at the moment")
