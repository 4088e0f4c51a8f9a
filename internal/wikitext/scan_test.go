package wikitext

import (
	"strings"
	"testing"
	"time"
)

func TestExtractNamedAndPositional(t *testing.T) {
	t.Parallel()

	text := "Intro {{AFC submission|D|ts=20240101000000|u=Example|2=nn}} body {{Other| a |b = c }}"
	templates := Extract(text)
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}

	first := templates[0]
	if first.Name != "AFC submission" {
		t.Fatalf("unexpected name: %q", first.Name)
	}
	if v, _ := first.Params.Get("1"); v != "D" {
		t.Fatalf("unexpected status param: %q", v)
	}
	if v, _ := first.Params.Get("ts"); v != "20240101000000" {
		t.Fatalf("unexpected ts: %q", v)
	}
	if v, _ := first.Params.Get("2"); v != "nn" {
		t.Fatalf("unexpected 2: %q", v)
	}

	second := templates[1]
	if v, _ := second.Params.Get("1"); v != " a " {
		t.Fatalf("positional values must stay verbatim, got %q", v)
	}
	if v, _ := second.Params.Get("b"); v != "c" {
		t.Fatalf("named values must be trimmed, got %q", v)
	}
}

func TestExtractNestedValues(t *testing.T) {
	t.Parallel()

	text := "{{AFC submission||ts={{subst:REVISIONTIMESTAMP}}|reason=see [[Foo|bar]] and {{tl|x|y}}}}"
	templates := Extract(text)
	if len(templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(templates))
	}
	params := templates[0].Params
	if v, _ := params.Get("ts"); v != "{{subst:REVISIONTIMESTAMP}}" {
		t.Fatalf("nested ts truncated: %q", v)
	}
	if v, _ := params.Get("reason"); v != "see [[Foo|bar]] and {{tl|x|y}}" {
		t.Fatalf("nested reason truncated: %q", v)
	}
	if v, _ := params.Get("1"); v != "" {
		t.Fatalf("expected empty status, got %q", v)
	}
}

func TestExtractSkipsMagicWords(t *testing.T) {
	t.Parallel()

	templates := Extract("{{DEFAULTSORT:Foo}} {{#if:a|b}} {{Template:Infobox|x=1}}")
	if len(templates) != 1 || templates[0].Name != "Infobox" {
		t.Fatalf("unexpected templates: %+v", templates)
	}
}

func TestStripRemovesMatchingConstructs(t *testing.T) {
	t.Parallel()

	text := "{{AFC submission|d|ts=1}}\n{{afc_submission|t|ts=2}}\nBody {{Keep|me}}\n"
	match := func(name string) bool { return NormalizeName(name) == "afc submission" }

	got := Strip(text, match)
	if got != "Body {{Keep|me}}\n" {
		t.Fatalf("unexpected strip result: %q", got)
	}
}

func TestScanBoundedOnUnclosedInput(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("{{AFC submission|d|ts=1}}")
	b.WriteString("{{AFC submission|")
	b.WriteString(strings.Repeat(" \n\t", 200000))
	b.WriteString(strings.Repeat("{{", 50000))
	input := b.String()

	start := time.Now()
	spans := Scan(input)
	stripped := Strip(input, func(name string) bool { return NormalizeName(name) == "afc submission" })
	elapsed := time.Since(start)

	if len(spans) != 1 {
		t.Fatalf("expected only the closed construct, got %d spans", len(spans))
	}
	if strings.HasPrefix(stripped, "{{AFC submission|d") {
		t.Fatalf("closed construct was not stripped")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("scan took %v on pathological input", elapsed)
	}
}

func TestScanTreatsUnclosedOpenerAsText(t *testing.T) {
	t.Parallel()

	input := "typo {{ here\n{{AFC submission|d|ts=1}}\nmore {{a|{{b}}}} end"
	spans := Scan(input)
	if len(spans) != 2 {
		t.Fatalf("expected two top-level spans, got %+v", spans)
	}
	if got := input[spans[0].Start:spans[0].End]; got != "{{AFC submission|d|ts=1}}" {
		t.Fatalf("unexpected first span %q", got)
	}
	if got := input[spans[1].Start:spans[1].End]; got != "{{a|{{b}}}}" {
		t.Fatalf("unexpected second span %q", got)
	}

	templates := Extract(input)
	if len(templates) != 2 || templates[0].Name != "AFC submission" {
		t.Fatalf("unexpected templates: %+v", templates)
	}

	stripped := Strip(input, func(name string) bool { return NormalizeName(name) == "afc submission" })
	if stripped != "typo {{ here\nmore {{a|{{b}}}} end" {
		t.Fatalf("unexpected stripped text %q", stripped)
	}
}

func TestScanIgnoresStrayCloser(t *testing.T) {
	t.Parallel()

	input := "}} {{x}} }}"
	spans := Scan(input)
	if len(spans) != 1 || input[spans[0].Start:spans[0].End] != "{{x}}" {
		t.Fatalf("unexpected spans: %+v", spans)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	t.Parallel()

	params := Params{{Key: "1", Value: "d"}, {Key: "ts", Value: "5"}, {Key: "2", Value: " spaced "}, {Key: "u", Value: "A=B"}}
	out := Render("AFC submission", params)
	if out != "{{AFC submission|d|ts=5| spaced |u=A=B}}" {
		t.Fatalf("unexpected render: %q", out)
	}

	parsed := Extract(out)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 template, got %d", len(parsed))
	}
	for _, want := range params {
		if got, _ := parsed[0].Params.Get(want.Key); got != want.Value {
			t.Fatalf("param %s: want %q, got %q", want.Key, want.Value, got)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"AFC submission":          "afc submission",
		" Template:AFC_submission": "afc submission",
		"afc   Submission":        "afc submission",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
