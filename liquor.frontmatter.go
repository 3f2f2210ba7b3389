package liquor

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const byteOrderMark = "\xef\xbb\xbf"

// frontMatter is the result of splitting a template source.
type frontMatter struct {
	data      map[string]any // nil when the source has no front matter
	body      string
	firstLine int // line number of the first body line
}

// splitFrontMatter separates a leading YAML block from the template body.
// The block must open with a "---" line at the very start of the source
// and close with the next "---" line. Sources without an opening line are
// returned unchanged.
func splitFrontMatter(source string) (frontMatter, error) {
	content := strings.TrimPrefix(source, byteOrderMark)

	afterOpening, ok := cutDelimiterLine(content)
	if !ok {
		return frontMatter{body: source, firstLine: 1}, nil
	}

	var yamlText, body string
	if rest, empty := cutDelimiterLine(afterOpening); empty {
		body = rest
	} else {
		closeIdx := findClosingDelimiter(afterOpening)
		if closeIdx < 0 {
			return frontMatter{}, NewSyntaxError(ErrMsgFrontMatterUnclosed, Position{Line: 1, Column: 1}, nil)
		}
		yamlText = afterOpening[:closeIdx]
		body, _ = cutDelimiterLine(afterOpening[closeIdx+1:])
	}

	if len(yamlText) > DefaultMaxFrontMatterSize {
		return frontMatter{}, NewSyntaxError(ErrMsgFrontMatterTooLarge, Position{Line: 1, Column: 1}, nil)
	}

	data := map[string]any{}
	if strings.TrimSpace(yamlText) != "" {
		if err := yaml.Unmarshal([]byte(yamlText), &data); err != nil {
			return frontMatter{}, NewSyntaxError(ErrMsgFrontMatterParse, Position{Line: 2, Column: 1}, err)
		}
		if data == nil {
			data = map[string]any{}
		}
	}

	consumed := content[:len(content)-len(body)]
	return frontMatter{
		data:      data,
		body:      body,
		firstLine: strings.Count(consumed, "\n") + 1,
	}, nil
}

// cutDelimiterLine strips a "---" line from the start of s. The line must
// end in a newline or at the end of s.
func cutDelimiterLine(s string) (string, bool) {
	if !strings.HasPrefix(s, FrontMatterDelimiter) {
		return s, false
	}
	rest := s[len(FrontMatterDelimiter):]
	rest = strings.TrimRight(rest[:lineEnd(rest)], " \t\r") + rest[lineEnd(rest):]
	switch {
	case rest == "":
		return "", true
	case rest[0] == '\n':
		return rest[1:], true
	}
	return s, false
}

// findClosingDelimiter returns the index of the newline that precedes the
// closing "---" line, or -1.
func findClosingDelimiter(s string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], "\n"+FrontMatterDelimiter)
		if idx < 0 {
			return -1
		}
		idx += offset
		if _, ok := cutDelimiterLine(s[idx+1:]); ok {
			return idx
		}
		offset = idx + 1
	}
}

func lineEnd(s string) int {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return i
	}
	return len(s)
}
