package security

import (
	"regexp"
	"strings"
)

var (
	classNameRe  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)
	methodNameRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// IsValidClassName reports whether name is a syntactically valid
// fully-qualified class name: letters/digits/underscore/dollar,
// dot-separated, never containing "..".
func IsValidClassName(name string) bool {
	return classNameRe.MatchString(name) && !strings.Contains(name, "..")
}

// IsValidMethodName reports whether name is a syntactically valid method
// name.
func IsValidMethodName(name string) bool {
	return methodNameRe.MatchString(name)
}

// Whitelist is the optional allow-list of fully-qualified class names
// permitted in a request's META.
type Whitelist struct {
	enabled bool
	classes map[string]struct{}
}

// NewWhitelist builds an enabled whitelist containing exactly classes.
func NewWhitelist(classes ...string) *Whitelist {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		set[c] = struct{}{}
	}
	return &Whitelist{enabled: true, classes: set}
}

// Disabled returns a whitelist that permits every class name.
func Disabled() *Whitelist {
	return &Whitelist{enabled: false}
}

// Allows reports whether className may appear in a request's META.
func (w *Whitelist) Allows(className string) bool {
	if w == nil || !w.enabled {
		return true
	}
	_, ok := w.classes[className]
	return ok
}
