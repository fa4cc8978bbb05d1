// Package format renders status lines from player state.
//
// A template is literal text with %name% specifiers and [...] groups:
//
//	[%artist% - ]%title%[ (%time%/%duration%)]
//
// A group is kept only if every specifier inside it, nested groups
// included, resolves. %% is a literal percent sign and %[% / %]% are
// literal brackets. Rendering never fails; whatever cannot be resolved is
// left out.
package format

import "strings"

// Resolver turns a specifier name into text. ok is false when the value is
// unavailable.
type Resolver interface {
	Resolve(name string) (value string, ok bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (string, bool)

func (f ResolverFunc) Resolve(name string) (string, bool) { return f(name) }

type state int

const (
	literal state = iota
	specifier
	discard
)

// resolve handles the escapes before asking r.
func resolve(r Resolver, name string) (string, bool) {
	switch name {
	case "":
		return "%", true
	case "n":
		return "\n", true
	case "[", "]":
		return name, true
	}
	return r.Resolve(name)
}

// Render expands template using r.
func Render(template string, r Resolver) string {
	var (
		out    strings.Builder
		groups []*strings.Builder

		st          = literal
		nesting     int  // open brackets seen while discarding
		inSpecifier bool // discarding inside %...%
	)

	active := func() *strings.Builder {
		if len(groups) > 0 {
			return groups[len(groups)-1]
		}
		return &out
	}

	s := template
	for len(s) > 0 {
		switch st {
		case literal:
			i := strings.IndexAny(s, "%[]")
			if i < 0 {
				active().WriteString(s)
				s = ""
				continue
			}
			active().WriteString(s[:i])
			c := s[i]
			s = s[i+1:]

			switch c {
			case '%':
				st = specifier
			case '[':
				groups = append(groups, new(strings.Builder))
			case ']':
				if len(groups) == 0 {
					out.WriteByte(']')
					continue
				}
				closed := groups[len(groups)-1]
				groups = groups[:len(groups)-1]
				active().WriteString(closed.String())
			}

		case specifier:
			i := strings.IndexByte(s, '%')
			if i < 0 {
				// unterminated specifier
				return out.String()
			}
			name := s[:i]
			s = s[i+1:]

			if v, ok := resolve(r, name); ok {
				active().WriteString(v)
				st = literal
				continue
			}
			if len(groups) == 0 {
				st = literal
				continue
			}
			// drop every open group and skip to the bracket closing the outermost
			nesting = len(groups) - 1
			groups = groups[:0]
			inSpecifier = false
			st = discard

		case discard:
			targets := "[]%"
			if inSpecifier {
				targets = "%"
			}
			i := strings.IndexAny(s, targets)
			if i < 0 {
				// unterminated group
				return out.String()
			}
			c := s[i]
			s = s[i+1:]

			switch c {
			case '%':
				inSpecifier = !inSpecifier
			case '[':
				nesting++
			case ']':
				if nesting == 0 {
					st = literal
				} else {
					nesting--
				}
			}
		}
	}

	return out.String()
}
