package cache

import (
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// KeySerializer flattens a typed key into the string form used by the fetch
// layer and in logs. Keys of one kind must share a common prefix so that
// prefix invalidation works.
type KeySerializer interface {
	SerializeKey(key AnyKey) string
}

// defaultKeySerializer renders kind::segment::segment.
type defaultKeySerializer struct {
	prefix string
}

var defaultSerializer = &defaultKeySerializer{}

// NewDefaultKeySerializer creates a serializer producing kind::segment keys.
func NewDefaultKeySerializer() KeySerializer {
	return defaultSerializer
}

// NewPrefixedKeySerializer namespaces every key, e.g. per bot application
// when several clients share one fetch cache.
func NewPrefixedKeySerializer(prefix string) KeySerializer {
	return &defaultKeySerializer{prefix: strings.TrimSuffix(prefix, KeySeparator)}
}

// SerializeKey builds the flat key.
func (s *defaultKeySerializer) SerializeKey(key AnyKey) string {
	segments := key.Segments()

	parts := make([]string, 0, len(segments)+2)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	parts = append(parts, string(key.Kind()))
	parts = append(parts, segments...)

	return strings.Join(parts, KeySeparator)
}

// KindPrefix returns the prefix shared by every key of kind, suitable for
// FetchService.DeleteByPrefix.
func KindPrefix(serializer KeySerializer, kind Kind) string {
	probe := prefixProbe{kind: kind}
	return strings.TrimSuffix(serializer.SerializeKey(probe), KeySeparator) + KeySeparator
}

// prefixProbe is a key with no segments, used to discover a serializer's
// per-kind prefix.
type prefixProbe struct {
	kind Kind
}

func (p prefixProbe) Kind() Kind { return p.kind }
func (p prefixProbe) Segments() []string { return nil }
func (p prefixProbe) String() string { return string(p.kind) }
