package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConnString is a parsed provider connection string.
//
// Connection strings are semicolon-separated key=value pairs, for example:
//
//	h=10.0.0.5;p=1883;t=sensors/room1;rc=10;ka=60;q=1;tout=20;prf=dev_
//
// Most keys are recognised under several aliases; lookups take the alias
// list and return the first key present.
type ConnString map[string]string

// ParseConnString parses a connection string into a ConnString.
//
// Keys and values are trimmed of whitespace and empty items are ignored.
// An item without "=" or with an empty key is an error. Only the first "="
// separates key from value, so values may contain "=" (URLs, tokens).
func ParseConnString(s string) (ConnString, error) {
	conf := make(ConnString)
	for _, item := range strings.Split(s, ";") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedConnString, strings.TrimSpace(item))
		}
		conf[key] = strings.TrimSpace(value)
	}
	return conf, nil
}

// lookup returns the value of the first alias present.
func (c ConnString) lookup(aliases []string) (string, bool) {
	for _, k := range aliases {
		if v, ok := c[k]; ok {
			return v, true
		}
	}
	return "", false
}

// Has reports whether any of the aliases is present.
func (c ConnString) Has(aliases ...string) bool {
	_, ok := c.lookup(aliases)
	return ok
}

// String returns the value for the first alias present, or def.
func (c ConnString) String(aliases []string, def string) string {
	if v, ok := c.lookup(aliases); ok {
		return v
	}
	return def
}

// Int returns the integer value for the first alias present, or def.
func (c ConnString) Int(aliases []string, def int) (int, error) {
	v, ok := c.lookup(aliases)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not an integer", ErrMalformedConnString, aliases[0], v)
	}
	return n, nil
}

// Bool returns the boolean value for the first alias present, or def.
// "1", "true", "yes" and "on" are true; anything else is false.
func (c ConnString) Bool(aliases []string, def bool) bool {
	v, ok := c.lookup(aliases)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Float returns the floating-point value for the first alias present, or def.
func (c ConnString) Float(aliases []string, def float64) (float64, error) {
	v, ok := c.lookup(aliases)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a number", ErrMalformedConnString, aliases[0], v)
	}
	return f, nil
}

// Seconds returns the integer value for the first alias present as a
// duration in seconds, or def. Negative values yield def.
func (c ConnString) Seconds(aliases []string, def time.Duration) (time.Duration, error) {
	n, err := c.Int(aliases, -1)
	if err != nil {
		return def, err
	}
	if n < 0 {
		return def, nil
	}
	return time.Duration(n) * time.Second, nil
}
