package publish

import "fmt"

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "cds"

// Key suffixes.
const (
	KeyOrder     = "order"
	KeyStandings = "standings"
	KeyUpdated   = "updated"
)

// KeyBuilder builds prefixed Redis keys.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder returns a builder for prefix, or DefaultPrefix when empty.
func NewKeyBuilder(prefix string) KeyBuilder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return KeyBuilder{prefix: prefix}
}

// BuildKey joins the prefix and key.
func (kb KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

func (kb KeyBuilder) Order() string     { return kb.BuildKey(KeyOrder) }
func (kb KeyBuilder) Standings() string { return kb.BuildKey(KeyStandings) }
func (kb KeyBuilder) Updated() string   { return kb.BuildKey(KeyUpdated) }
