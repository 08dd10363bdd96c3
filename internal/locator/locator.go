// Package locator parses element locator strings into a strategy and a value.
//
// A locator is either explicit, "strategy=value" or "strategy:value", or
// implicit. Implicit locators starting with "//" or "(//" are xpath, anything
// else is matched against the id and name attributes.
package locator

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	ID          = "id"
	Name        = "name"
	Identifier  = "identifier"
	XPath       = "xpath"
	CSS         = "css"
	Link        = "link"
	PartialLink = "partial link"
	Tag         = "tag"
	Class       = "class"
)

var builtins = map[string]bool{
	ID:          true,
	Name:        true,
	Identifier:  true,
	XPath:       true,
	CSS:         true,
	Link:        true,
	PartialLink: true,
	Tag:         true,
	Class:       true,
}

// Locator is a parsed locator. Script is only set for custom strategies and
// holds the body of a JavaScript function that receives the value as its
// only argument and returns the matching elements.
type Locator struct {
	Strategy string
	Value    string
	Script   string
}

// IsCustom reports whether the locator uses a registered custom strategy.
func (l Locator) IsCustom() bool {
	return l.Script != ""
}

func (l Locator) String() string {
	return l.Strategy + "=" + l.Value
}

type strategy struct {
	script  string
	persist bool
}

// Finder parses locators and holds the custom strategies.
type Finder struct {
	custom map[string]strategy
}

func NewFinder() *Finder {
	return &Finder{custom: make(map[string]strategy)}
}

// Parse splits text into strategy and value.
func (f *Finder) Parse(text string) (Locator, error) {
	if strings.TrimSpace(text) == "" {
		return Locator{}, fmt.Errorf("locator cannot be empty")
	}
	if strings.HasPrefix(text, "//") || strings.HasPrefix(text, "(//") {
		return Locator{Strategy: XPath, Value: text}, nil
	}

	if index := separatorIndex(text); index != -1 {
		prefix := strings.ToLower(strings.TrimSpace(text[:index]))
		value := strings.TrimLeft(text[index+1:], " ")
		if builtins[prefix] {
			return Locator{Strategy: prefix, Value: value}, nil
		}
		if s, ok := f.custom[prefix]; ok {
			return Locator{Strategy: prefix, Value: value, Script: s.script}, nil
		}
	}
	return Locator{Strategy: Identifier, Value: text}, nil
}

// Register adds a custom strategy. Strategies that are not persistent are
// dropped by ClearTransient.
func (f *Finder) Register(name, script string, persist bool) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("strategy name cannot be empty")
	}
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("strategy '%s' needs a script", name)
	}
	if builtins[key] {
		return fmt.Errorf("cannot override built-in strategy '%s'", name)
	}
	if _, ok := f.custom[key]; ok {
		return fmt.Errorf("strategy '%s' is already registered", name)
	}
	f.custom[key] = strategy{script: script, persist: persist}
	log.Debugf("Registered location strategy '%s'", key)
	return nil
}

// Unregister removes a custom strategy.
func (f *Finder) Unregister(name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if builtins[key] {
		return fmt.Errorf("cannot unregister built-in strategy '%s'", name)
	}
	if _, ok := f.custom[key]; !ok {
		return fmt.Errorf("strategy '%s' is not registered", name)
	}
	delete(f.custom, key)
	return nil
}

// ClearTransient removes the custom strategies registered without persist.
func (f *Finder) ClearTransient() {
	for name, s := range f.custom {
		if !s.persist {
			delete(f.custom, name)
		}
	}
}

// Strategies lists the built-in and custom strategy names, sorted.
func (f *Finder) Strategies() []string {
	names := make([]string, 0, len(builtins)+len(f.custom))
	for name := range builtins {
		names = append(names, name)
	}
	for name := range f.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func separatorIndex(text string) int {
	eq := strings.Index(text, "=")
	colon := strings.Index(text, ":")
	switch {
	case eq == -1:
		return colon
	case colon == -1:
		return eq
	case eq < colon:
		return eq
	default:
		return colon
	}
}
