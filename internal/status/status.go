package status

import (
	"html"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// PageToken is replaced with a link to the page the operation works on.
const PageToken = "$1"

// Element is one status line bound to an in-flight operation.
type Element interface {
	Update(html string)
	Remove()
}

// Sink creates status lines.
type Sink interface {
	Add(text string, subs map[string]string) Element
}

// Entry is a read-only snapshot of a status line.
type Entry struct {
	ID   string
	HTML string
	Text string
}

// Log is the ordered, append-only record of status lines shared by all
// operations of a session.
type Log struct {
	mu          sync.Mutex
	lines       []*Line
	articlePath string
	logger      *slog.Logger
}

// NewLog builds a log; articlePath is the wiki's page URL prefix, e.g.
// https://en.wikipedia.org/wiki.
func NewLog(articlePath string, logger *slog.Logger) *Log {
	return &Log{articlePath: strings.TrimSuffix(articlePath, "/"), logger: logger}
}

// ForPage returns a sink whose lines substitute PageToken with a link to title.
func (l *Log) ForPage(title string) Sink {
	return &pageSink{log: l, title: title}
}

// PageLink renders an HTML anchor pointing at title.
func (l *Log) PageLink(title string) string {
	href := l.articlePath + "/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	escaped := html.EscapeString(title)
	return `<a href="` + html.EscapeString(href) + `" title="` + escaped + `">` + escaped + `</a>`
}

// Entries returns the lines in the order they were added.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.lines))
	for _, line := range l.lines {
		entries = append(entries, Entry{ID: line.id, HTML: line.html, Text: line.text})
	}
	return entries
}

func (l *Log) append(line *Line) {
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
}

type pageSink struct {
	log   *Log
	title string
}

func (s *pageSink) Add(text string, subs map[string]string) Element {
	merged := map[string]string{PageToken: s.log.PageLink(s.title)}
	for token, value := range subs {
		merged[token] = value
	}

	line := &Line{id: uuid.NewString(), log: s.log, replacer: newReplacer(merged)}
	s.log.append(line)
	line.Update(text)
	return line
}

// Line is a status entry; substitutions are fixed when the line is created.
type Line struct {
	id       string
	log      *Log
	replacer *strings.Replacer
	html     string
	text     string
}

// Update replaces the content of the line.
func (l *Line) Update(content string) {
	rendered := l.replacer.Replace(content)
	text := plainText(rendered)

	l.log.mu.Lock()
	l.html = rendered
	l.text = text
	l.log.mu.Unlock()

	if l.log.logger != nil && text != "" {
		l.log.logger.Info(text, "line", l.id)
	}
}

// Remove clears the line.
func (l *Line) Remove() {
	l.Update("")
}

// Nop discards everything; used for operations hidden from the status log.
type Nop struct{}

// Add returns a line that ignores updates.
func (Nop) Add(string, map[string]string) Element {
	return nopElement{}
}

type nopElement struct{}

func (nopElement) Update(string) {}
func (nopElement) Remove()       {}

func newReplacer(subs map[string]string) *strings.Replacer {
	tokens := make([]string, 0, len(subs))
	for token := range subs {
		tokens = append(tokens, token)
	}
	// longer tokens first so "$10" is not consumed by "$1"
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	pairs := make([]string, 0, len(tokens)*2)
	for _, token := range tokens {
		pairs = append(pairs, token, subs[token])
	}
	return strings.NewReplacer(pairs...)
}

func plainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
