package wikitext

import "strings"

// RemoveEmptySectionAtEnd drops the final heading of text when nothing but
// whitespace and category links follows it. Category links are kept verbatim.
func RemoveEmptySectionAtEnd(text string) string {
	start, end, ok := lastHeading(text)
	if !ok {
		return text
	}

	rest := text[end:]
	if !onlyCategories(rest) {
		return text
	}

	before := strings.TrimRight(text[:start], "\n")
	if before == "" {
		return rest
	}
	return before + "\n" + rest
}

// lastHeading locates the last "== title ==" line. end includes its newline.
func lastHeading(text string) (start, end int, ok bool) {
	offset := 0
	for offset <= len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		next := len(text) + 1
		line := text[offset:]
		if lineEnd >= 0 {
			line = text[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}
		if isHeading(line) {
			start, ok = offset, true
			end = next
			if end > len(text) {
				end = len(text)
			}
		}
		offset = next
	}
	return start, end, ok
}

func isHeading(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	if len(line) < 3 || line[0] != '=' || line[len(line)-1] != '=' {
		return false
	}
	return strings.TrimSpace(strings.Trim(line, "=")) != ""
}

func onlyCategories(s string) bool {
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return true
		}
		if !strings.HasPrefix(strings.ToLower(s), "[[category:") {
			return false
		}
		closing := strings.Index(s, "]]")
		if closing < 0 {
			return false
		}
		s = s[closing+2:]
	}
}
