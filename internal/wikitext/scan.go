package wikitext

import (
	"strconv"
	"strings"
)

// Span marks a top-level {{...}} construct inside a text as the half-open
// byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// Scan finds every balanced top-level {{...}} construct in text. It makes one
// pass with an explicit stack of open offsets, so unterminated openers and
// long runs of filler cost linear time instead of backtracking.
//
// An opener that is never closed is literal text: it neither becomes a span
// nor hides the constructs that follow it.
func Scan(text string) []Span {
	var (
		spans []Span
		open  []int
	)
	for i := 0; i+1 < len(text); {
		switch {
		case text[i] == '{' && text[i+1] == '{':
			open = append(open, i)
			i += 2
		case text[i] == '}' && text[i+1] == '}' && len(open) > 0:
			start := open[len(open)-1]
			open = open[:len(open)-1]
			i += 2
			// pairs close inner-first, so anything already recorded that
			// starts after start is enclosed by this pair
			for len(spans) > 0 && spans[len(spans)-1].Start > start {
				spans = spans[:len(spans)-1]
			}
			spans = append(spans, Span{Start: start, End: i})
		default:
			i++
		}
	}
	return spans
}

// Extract returns the top-level template invocations of text in source order.
func Extract(text string) []Template {
	spans := Scan(text)
	templates := make([]Template, 0, len(spans))
	for _, span := range spans {
		if tpl, ok := parseInvocation(text[span.Start+2 : span.End-2]); ok {
			templates = append(templates, tpl)
		}
	}
	return templates
}

// Strip removes every top-level construct whose name satisfies match, together
// with one newline directly following it.
func Strip(text string, match func(name string) bool) string {
	spans := Scan(text)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range spans {
		tpl, ok := parseInvocation(text[span.Start+2 : span.End-2])
		if !ok || !match(tpl.Name) {
			continue
		}
		b.WriteString(text[last:span.Start])
		last = span.End
		if last < len(text) && text[last] == '\n' {
			last++
		}
	}
	b.WriteString(text[last:])
	return b.String()
}

// parseInvocation splits the inner text of a construct on depth-0 pipes.
// Parser functions and magic words ({{#if:..}}, {{subst:..}}) are rejected.
func parseInvocation(inner string) (Template, bool) {
	parts := splitTopLevel(inner, '|')
	name := strings.TrimSpace(parts[0])
	if name == "" || strings.HasPrefix(name, "#") || strings.HasPrefix(name, "{") {
		return Template{}, false
	}
	if idx := strings.IndexByte(name, ':'); idx >= 0 && !strings.EqualFold(name[:idx], "template") {
		return Template{}, false
	}
	if strings.HasPrefix(strings.ToLower(name), "template:") {
		name = strings.TrimSpace(name[len("template:"):])
	}

	tpl := Template{Name: name}
	position := 0
	for _, part := range parts[1:] {
		if eq := indexTopLevel(part, '='); eq >= 0 {
			key := strings.TrimSpace(part[:eq])
			value := strings.TrimSpace(part[eq+1:])
			tpl.Params = tpl.Params.Set(key, value)
			continue
		}
		position++
		tpl.Params = tpl.Params.Set(strconv.Itoa(position), part)
	}
	return tpl, true
}

// splitTopLevel splits s on sep where sep is outside nested {{ }} and [[ ]].
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	last := 0
	walkTopLevel(s, func(i int) bool {
		if s[i] == sep {
			parts = append(parts, s[last:i])
			last = i + 1
		}
		return true
	})
	return append(parts, s[last:])
}

func indexTopLevel(s string, c byte) int {
	found := -1
	walkTopLevel(s, func(i int) bool {
		if s[i] == c {
			found = i
			return false
		}
		return true
	})
	return found
}

// walkTopLevel calls visit for each byte offset that sits at nesting depth 0.
func walkTopLevel(s string, visit func(i int) bool) {
	braces, brackets := 0, 0
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) {
			pair := s[i : i+2]
			switch {
			case pair == "{{":
				braces++
				i++
				continue
			case pair == "}}" && braces > 0:
				braces--
				i++
				continue
			case pair == "[[":
				brackets++
				i++
				continue
			case pair == "]]" && brackets > 0:
				brackets--
				i++
				continue
			}
		}
		if braces == 0 && brackets == 0 && !visit(i) {
			return
		}
	}
}
