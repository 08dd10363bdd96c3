package registry

import (
	"strconv"
	"strings"
)

// Key identifies a registered session, either by alias or by index.
type Key struct {
	alias string
	index int
}

// Alias returns the key for an alias.
func Alias(name string) Key {
	return Key{alias: name}
}

// Index returns the key for a sequential index.
func Index(i int) Key {
	return Key{index: i}
}

// ParseIndex reads text as an index key. Only positive integers are indices.
func ParseIndex(text string) (Key, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || i < 1 {
		return Key{}, false
	}
	return Index(i), true
}

func (k Key) IsAlias() bool {
	return k.index == 0
}

func (k Key) Name() string {
	return k.alias
}

func (k Key) Number() int {
	return k.index
}

// Value returns the alias string or the index int, for reporting.
func (k Key) Value() any {
	if k.IsAlias() {
		return k.alias
	}
	return k.index
}

func (k Key) String() string {
	if k.IsAlias() {
		return k.alias
	}
	return strconv.Itoa(k.index)
}
