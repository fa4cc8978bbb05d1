package format

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tr1v3r/pkg/log"

	"github.com/tr1v3r/mpvc/mpv"
)

// PropertyGetter fetches a live property; *mpv.Conn implements it.
type PropertyGetter interface {
	GetProperty(ctx context.Context, name string) (any, error)
}

// metadataKeys are only ever looked up in the metadata snapshot.
var metadataKeys = map[string]bool{
	"artist":       true,
	"album":        true,
	"album_artist": true,
	"date":         true,
	"track":        true,
	"genre":        true,
	"composer":     true,
	"comment":      true,
	"disc":         true,
}

// PlayerResolver resolves specifiers against a running player. The file
// metadata is fetched once, when the resolver is created; everything else
// is queried as it is needed.
type PlayerResolver struct {
	ctx      context.Context
	getter   PropertyGetter
	metadata map[string]any
}

// NewPlayerResolver snapshots the metadata of the current file. A player
// with nothing loaded yields an empty snapshot.
func NewPlayerResolver(ctx context.Context, g PropertyGetter) *PlayerResolver {
	r := &PlayerResolver{ctx: ctx, getter: g, metadata: map[string]any{}}

	val, err := g.GetProperty(ctx, "metadata")
	if err != nil {
		log.CtxDebug(ctx, "no metadata: %v", err)
		return r
	}
	if m, ok := val.(map[string]any); ok {
		for k, v := range m {
			r.metadata[strings.ToLower(k)] = v
		}
	}
	return r
}

func (r *PlayerResolver) Resolve(name string) (string, bool) {
	switch {
	case name == "title":
		if v, ok := r.fromMetadata("title"); ok {
			return v, true
		}
		return r.property("media-title")
	case metadataKeys[name]:
		return r.fromMetadata(name)
	case name == "time":
		return r.duration("time-pos")
	case name == "duration":
		return r.duration("duration")
	case name == "percentage":
		f, ok := r.number("percent-pos")
		if !ok {
			return "", false
		}
		return strconv.FormatInt(int64(f), 10), true
	case name == "position":
		return r.property("playlist-pos-1")
	}

	if q := strings.IndexByte(name, '?'); q >= 0 {
		if c := strings.IndexByte(name[q+1:], ':'); c >= 0 {
			return r.ternary(name[:q], name[q+1:q+1+c], name[q+2+c:])
		}
	}

	if v, ok := r.fromMetadata(strings.ToLower(name)); ok {
		return v, true
	}
	return r.property(name)
}

func (r *PlayerResolver) fromMetadata(key string) (string, bool) {
	v, ok := r.metadata[key]
	if !ok {
		return "", false
	}
	s, err := mpv.Stringify(v)
	return s, err == nil
}

func (r *PlayerResolver) get(name string) (any, bool) {
	val, err := r.getter.GetProperty(r.ctx, name)
	if err != nil {
		log.CtxDebug(r.ctx, "property %s unavailable: %v", name, err)
		return nil, false
	}
	return val, val != nil
}

func (r *PlayerResolver) property(name string) (string, bool) {
	val, ok := r.get(name)
	if !ok {
		return "", false
	}
	s, err := mpv.Stringify(val)
	return s, err == nil
}

func (r *PlayerResolver) number(name string) (float64, bool) {
	val, ok := r.get(name)
	if !ok {
		return 0, false
	}
	return mpv.Float(val)
}

func (r *PlayerResolver) duration(name string) (string, bool) {
	f, ok := r.number(name)
	if !ok {
		return "", false
	}
	return FormatDuration(f), true
}

func (r *PlayerResolver) ternary(prop, yes, no string) (string, bool) {
	val, ok := r.get(prop)
	if !ok {
		return "", false
	}
	b, ok := val.(bool)
	if !ok {
		return "", false
	}
	if b {
		return yes, true
	}
	return no, true
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS from one hour up.
func FormatDuration(seconds float64) string {
	total := int64(math.Max(seconds, 0))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
