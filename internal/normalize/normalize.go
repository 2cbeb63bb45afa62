// Package normalize reduces heterogeneous provider responses to a single
// result URL. Providers answer with a bare string, an object exposing a URL,
// a list of either, or a map keyed by one of several known names; each of
// these is one variant of Shape.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindString   Kind = "string"
	KindAccessor Kind = "accessor"
	KindList     Kind = "list"
	KindMap      Kind = "map"
)

var (
	ErrNoShapeMatched = errors.New("no response shape matched")
	ErrInvalidURL     = errors.New("result is not an http(s) url")
)

const maxDepth = 4

// URLer is implemented by provider result objects that carry their URL behind an accessor.
type URLer interface {
	URL() string
}

// Shape is the decoded form of a provider response.
type Shape struct {
	Kind Kind
	URL  string
}

// UnmatchedError reports a value none of the matchers accepted.
type UnmatchedError struct {
	Type string
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNoShapeMatched, e.Type)
}

func (e *UnmatchedError) Unwrap() error {
	return ErrNoShapeMatched
}

type matcher struct {
	kind  Kind
	match func(d *Decoder, v any, depth int) (string, bool)
}

// Decoder tries its matchers in a fixed order: string, accessor, list, map.
type Decoder struct {
	keyPaths [][]string
	matchers []matcher
}

// NewDecoder returns a decoder whose map matcher probes the given keys in
// order. Dotted keys such as "data.url" descend into nested maps.
func NewDecoder(keys ...string) *Decoder {
	d := &Decoder{}
	for _, k := range keys {
		d.keyPaths = append(d.keyPaths, strings.Split(k, "."))
	}
	d.matchers = []matcher{
		{kind: KindString, match: matchString},
		{kind: KindAccessor, match: matchAccessor},
		{kind: KindList, match: matchList},
		{kind: KindMap, match: matchMap},
	}
	return d
}

// Default handles generation model outputs: string, accessor, list, or a
// map carrying "url" or "output".
var Default = NewDecoder("url", "output")

func (d *Decoder) Decode(v any) (Shape, error) {
	if v == nil {
		return Shape{}, &UnmatchedError{Type: "nil"}
	}
	for _, m := range d.matchers {
		raw, ok := m.match(d, v, 0)
		if !ok {
			continue
		}
		if !isHTTPURL(raw) {
			return Shape{Kind: m.kind}, fmt.Errorf("%w: %q", ErrInvalidURL, truncate(raw))
		}
		return Shape{Kind: m.kind, URL: raw}, nil
	}
	return Shape{}, &UnmatchedError{Type: fmt.Sprintf("%T", v)}
}

// DecodeJSON unmarshals raw JSON and decodes the result.
func (d *Decoder) DecodeJSON(raw []byte) (Shape, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Shape{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return d.Decode(v)
}

// URL is Decode returning only the URL.
func (d *Decoder) URL(v any) (string, error) {
	shape, err := d.Decode(v)
	if err != nil {
		return "", err
	}
	return shape.URL, nil
}

func (d *Decoder) inner(v any, depth int) (string, bool) {
	if depth > maxDepth || v == nil {
		return "", false
	}
	for _, m := range d.matchers {
		if raw, ok := m.match(d, v, depth); ok {
			return raw, true
		}
	}
	return "", false
}

func matchString(_ *Decoder, v any, _ int) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func matchAccessor(_ *Decoder, v any, _ int) (string, bool) {
	u, ok := v.(URLer)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(u.URL()), true
}

func matchList(d *Decoder, v any, depth int) (string, bool) {
	var first any
	switch l := v.(type) {
	case []any:
		if len(l) == 0 {
			return "", false
		}
		first = l[0]
	case []string:
		if len(l) == 0 {
			return "", false
		}
		first = l[0]
	case []URLer:
		if len(l) == 0 {
			return "", false
		}
		first = l[0]
	default:
		return "", false
	}
	return d.inner(first, depth+1)
}

func matchMap(d *Decoder, v any, depth int) (string, bool) {
	var m map[string]any
	switch t := v.(type) {
	case map[string]any:
		m = t
	case map[string]string:
		m = make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
	default:
		return "", false
	}
	for _, path := range d.keyPaths {
		val, ok := lookup(m, path)
		if !ok || val == nil {
			continue
		}
		if raw, ok := d.inner(val, depth+1); ok && raw != "" {
			return raw, true
		}
	}
	return "", false
}

func lookup(m map[string]any, path []string) (any, bool) {
	var cur any = m
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func truncate(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
