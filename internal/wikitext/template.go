package wikitext

import (
	"strconv"
	"strings"
)

// Param is a single template argument; Key is "1", "2", ... for positional values.
type Param struct {
	Key   string
	Value string
}

// Params keeps template arguments in source order.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set replaces the value of an existing key in place or appends a new one.
func (p Params) Set(key, value string) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Param{Key: key, Value: value})
}

// Delete drops every occurrence of key.
func (p Params) Delete(key string) Params {
	out := p[:0]
	for _, param := range p {
		if param.Key != key {
			out = append(out, param)
		}
	}
	return out
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Template is a generic {{name|...}} invocation.
type Template struct {
	Name   string
	Params Params
}

// NormalizeName folds a template name for comparisons: the Template: prefix,
// underscores, surrounding space and letter case are ignored.
func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "template:") {
		lower = strings.TrimSpace(lower[len("template:"):])
	}
	return strings.Join(strings.Fields(lower), " ")
}

// Render writes a template back to markup. Positional params whose key matches
// their position and whose value holds no "=" are written bare; everything
// else is written as key=value.
func Render(name string, params Params) string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(name)
	next := 1
	for _, param := range params {
		b.WriteByte('|')
		if param.Key == strconv.Itoa(next) && !strings.Contains(param.Value, "=") {
			b.WriteString(param.Value)
			next++
			continue
		}
		b.WriteString(param.Key)
		b.WriteByte('=')
		b.WriteString(param.Value)
	}
	b.WriteString("}}")
	return b.String()
}
