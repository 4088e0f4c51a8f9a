package submission

import (
	"strings"

	"DraftReviewer/internal/wikitext"
)

// Serializer writes a submission stack back into page text.
type Serializer struct {
	parser *Parser
}

// NewSerializer writes templates under the parser's canonical name and strips
// every construct the parser recognises.
func NewSerializer(parser *Parser) *Serializer {
	if parser == nil {
		parser = NewParser("")
	}
	return &Serializer{parser: parser}
}

// Render emits one template per line, newest first.
func (s *Serializer) Render(stack []Template) string {
	lines := make([]string, 0, len(stack))
	for _, tpl := range stack {
		lines = append(lines, tpl.markup(s.parser.TemplateName()))
	}
	return strings.Join(lines, "\n")
}

// Rewrite removes every existing submission template from text and prepends
// the rendered stack. Rewriting the same stack twice yields the same text.
func (s *Serializer) Rewrite(text string, stack []Template) string {
	stripped := wikitext.Strip(text, s.parser.Matches)
	if len(stack) == 0 {
		return stripped
	}
	return s.Render(stack) + "\n" + stripped
}
