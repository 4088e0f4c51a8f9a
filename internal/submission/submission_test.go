package submission

import (
	"reflect"
	"strings"
	"testing"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/wikitext"
)

func invocation(status, ts string, extra ...wikitext.Param) wikitext.Template {
	params := wikitext.Params{{Key: "1", Value: status}, {Key: "ts", Value: ts}}
	return wikitext.Template{Name: "AFC submission", Params: append(params, extra...)}
}

func TestParseDeclinedSupersedesOlderMarkers(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{
		invocation("", "1"),
		invocation("t", "2"),
		invocation("d", "3"),
	})

	if !sub.IsDeclined || sub.IsDraft || sub.IsPending || sub.IsUnderReview {
		t.Fatalf("unexpected flags: %+v", sub)
	}
	if sub.IsCurrentlySubmitted {
		t.Fatalf("declined draft must not count as submitted")
	}
	if len(sub.Templates) != 1 || sub.Templates[0].Status != domain.ReviewDeclined {
		t.Fatalf("expected only the decline to be retained, got %+v", sub.Templates)
	}
}

func TestParseMalformedTimestampSortsFirst(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{
		invocation("d", "99999999999999"),
		invocation("", NowTimestamp),
		invocation("t", "not-a-number"),
	})

	if len(sub.Templates) != 2 {
		t.Fatalf("expected 2 retained templates, got %+v", sub.Templates)
	}
	if sub.Templates[0].Timestamp != NowTimestamp {
		t.Fatalf("malformed timestamp must be newest, got %q", sub.Templates[0].Timestamp)
	}
	if !sub.IsPending || !sub.IsCurrentlySubmitted {
		t.Fatalf("expected a pending submission, got %+v", sub)
	}
	if sub.Templates[1].Status != domain.ReviewDeclined {
		t.Fatalf("historical decline should stay on the stack, got %+v", sub.Templates[1])
	}
	if sub.IsDeclined {
		t.Fatalf("older decline must not override newer pending")
	}
}

func TestParseIgnoresOtherTemplatesAndNormalisesStatus(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{
		{Name: "Infobox", Params: wikitext.Params{{Key: "1", Value: "d"}}},
		{Name: "afc_submission", Params: wikitext.Params{{Key: "1", Value: " R "}, {Key: "ts", Value: "5"}}},
	})

	if !sub.IsUnderReview || !sub.IsCurrentlySubmitted {
		t.Fatalf("expected under review, got %+v", sub)
	}
	if len(sub.Templates) != 1 {
		t.Fatalf("unexpected stack: %+v", sub.Templates)
	}
}

func TestParseDraftOnly(t *testing.T) {
	t.Parallel()

	sub := NewParser("").ParseText("{{AFC submission|t|ts=20240101000000|u=Someone}}\nDraft body")
	if !sub.IsDraft || sub.IsCurrentlySubmitted {
		t.Fatalf("expected an unsubmitted draft, got %+v", sub)
	}
	if v, _ := sub.Params.Get("u"); v != "Someone" {
		t.Fatalf("unexpected params: %+v", sub.Params)
	}
}

func TestParseDropsDuplicatePending(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{
		invocation("", "10", wikitext.Param{Key: "u", Value: "Old"}),
		invocation("", "20", wikitext.Param{Key: "u", Value: "New"}, wikitext.Param{Key: "ns", Value: "118"}),
	})

	if len(sub.Templates) != 1 || sub.Templates[0].Timestamp != "20" {
		t.Fatalf("expected only the newest pending marker, got %+v", sub.Templates)
	}
	if v, _ := sub.Params.Get("u"); v != "New" {
		t.Fatalf("newest parameters must win, got %q", v)
	}
}

func TestParamsMergeFirstWriterWins(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{
		invocation("d", "1", wikitext.Param{Key: "decliner", Value: "A"}, wikitext.Param{Key: "u", Value: "Old"}),
		invocation("r", "2", wikitext.Param{Key: "u", Value: "New"}),
	})

	want := wikitext.Params{{Key: "u", Value: "New"}, {Key: "decliner", Value: "A"}}
	if !reflect.DeepEqual(sub.Params, want) {
		t.Fatalf("unexpected merged params: %+v", sub.Params)
	}
}

func TestSetStatusRejectsUnknownCode(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{invocation("t", "1")})
	before := cloneStack(sub.Templates)

	if sub.SetStatus("x") {
		t.Fatalf("SetStatus accepted an unknown code")
	}
	if !reflect.DeepEqual(before, sub.Templates) || !sub.IsDraft {
		t.Fatalf("stack changed after rejected SetStatus: %+v", sub.Templates)
	}
}

func TestSetStatusReResolves(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{
		invocation("t", "1"),
		invocation("", "2"),
	})
	if !sub.IsPending {
		t.Fatalf("expected pending before mutation")
	}

	if !sub.SetStatus("d") {
		t.Fatalf("SetStatus(d) failed")
	}
	if !sub.IsDeclined || sub.IsPending || sub.IsCurrentlySubmitted {
		t.Fatalf("unexpected flags after decline: %+v", sub)
	}
	if len(sub.Templates) != 1 {
		t.Fatalf("draft marker should be dropped after decline, got %+v", sub.Templates)
	}
}

func TestSetStatusOnEmptyStackAddsTemplate(t *testing.T) {
	t.Parallel()

	sub := NewParser("").ParseText("No templates here")
	if !sub.SetStatus("") {
		t.Fatalf("SetStatus on empty stack failed")
	}
	if len(sub.Templates) != 1 || sub.Templates[0].Timestamp != NowTimestamp {
		t.Fatalf("expected a fresh template, got %+v", sub.Templates)
	}
	if !sub.IsPending {
		t.Fatalf("expected pending after submit")
	}
}

func TestAddNewTemplateOverrides(t *testing.T) {
	t.Parallel()

	sub := NewParser("").Parse([]wikitext.Template{invocation("d", "5")})
	sub.AddNewTemplate(TemplateData{
		Status:    domain.ReviewUnderReview,
		Timestamp: "6",
		Params:    wikitext.Params{{Key: "reviewer", Value: "Example"}},
	})

	if len(sub.Templates) != 2 || sub.Templates[0].Timestamp != "6" {
		t.Fatalf("new template not on top: %+v", sub.Templates)
	}
	if !sub.IsUnderReview || sub.IsDeclined {
		t.Fatalf("unexpected flags: %+v", sub)
	}
	if v, _ := sub.Params.Get("reviewer"); v != "Example" {
		t.Fatalf("params not merged: %+v", sub.Params)
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	t.Parallel()

	parser := NewParser("")
	serializer := NewSerializer(parser)

	original := strings.Join([]string{
		"{{AFC submission|d|ts=20240301000000|decliner=Rev|2=reason with [[Link|pipe]]}}",
		"{{AFC submission||ts=20240401000000|u=Author|ns=118}}",
		"Article body {{cite web|url=https://example.org}}",
		"{{AFC submission|t|ts=20240101000000}}",
		"More text",
	}, "\n")

	sub := parser.ParseText(original)
	rewritten := serializer.Rewrite(original, sub.Templates)

	reparsed := parser.ParseText(rewritten)
	if !reflect.DeepEqual(reparsed.Templates, sub.Templates) {
		t.Fatalf("stack changed after round trip:\n%+v\n%+v", sub.Templates, reparsed.Templates)
	}
	if reparsed.IsDeclined != sub.IsDeclined || reparsed.IsPending != sub.IsPending || reparsed.IsDraft != sub.IsDraft {
		t.Fatalf("flags changed after round trip")
	}

	if again := serializer.Rewrite(rewritten, reparsed.Templates); again != rewritten {
		t.Fatalf("second rewrite changed text:\n%q\n%q", rewritten, again)
	}
	if !strings.Contains(rewritten, "Article body {{cite web|url=https://example.org}}\nMore text") {
		t.Fatalf("surrounding content corrupted: %q", rewritten)
	}
	if strings.Count(rewritten, "{{AFC submission") != len(sub.Templates) {
		t.Fatalf("unexpected number of constructs: %q", rewritten)
	}
}

func TestRewriteSurvivesUnclosedBraces(t *testing.T) {
	t.Parallel()

	parser := NewParser("")
	serializer := NewSerializer(parser)
	original := "Intro with a typo {{ here\n{{AFC submission|d|ts=20240101000000}}\nBody"

	sub := parser.ParseText(original)
	if len(sub.Templates) != 1 || !sub.IsDeclined {
		t.Fatalf("template after a stray opener was missed: %+v", sub)
	}
	if !sub.SetStatus("") {
		t.Fatalf("SetStatus rejected pending")
	}

	rewritten := serializer.Rewrite(original, sub.Templates)
	want := "{{AFC submission||ts=20240101000000}}\nIntro with a typo {{ here\nBody"
	if rewritten != want {
		t.Fatalf("unexpected rewrite:\n%q\n%q", rewritten, want)
	}
	if again := serializer.Rewrite(rewritten, parser.ParseText(rewritten).Templates); again != rewritten {
		t.Fatalf("second rewrite changed text: %q", again)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	sub := NewParser("").ParseText("{{AFC submission||ts=20240101|u=Author}}")
	clone := sub.Clone()
	if !clone.SetStatus("d") {
		t.Fatalf("SetStatus rejected d")
	}
	clone.Templates[0].Params = clone.Templates[0].Params.Set("u", "Other")

	if !sub.IsPending || sub.IsDeclined || sub.Templates[0].Status != domain.ReviewPending {
		t.Fatalf("original changed through clone: %+v", sub)
	}
	if got, _ := sub.Templates[0].Params.Get("u"); got != "Author" {
		t.Fatalf("original params changed: %q", got)
	}
	if !clone.IsDeclined {
		t.Fatalf("clone did not take the new status")
	}
}

func TestRewriteEmptyStackStripsTemplates(t *testing.T) {
	t.Parallel()

	serializer := NewSerializer(nil)
	got := serializer.Rewrite("{{AFC submission|t|ts=1}}\nBody", nil)
	if got != "Body" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestRenderOrder(t *testing.T) {
	t.Parallel()

	serializer := NewSerializer(NewParser(""))
	out := serializer.Render([]Template{
		{Status: domain.ReviewDeclined, Timestamp: "2", Params: wikitext.Params{{Key: "decliner", Value: "X"}}},
		{Status: domain.ReviewPending, Timestamp: "1"},
	})
	want := "{{AFC submission|d|ts=2|decliner=X}}\n{{AFC submission||ts=1}}"
	if out != want {
		t.Fatalf("Render = %q, want %q", out, want)
	}
}
