package internal

import (
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String filter names
const (
	FilterAppend        = "append"
	FilterPrepend       = "prepend"
	FilterCapitalize    = "capitalize"
	FilterDowncase      = "downcase"
	FilterUpcase        = "upcase"
	FilterRemove        = "remove"
	FilterRemoveFirst   = "remove_first"
	FilterReplace       = "replace"
	FilterReplaceFirst  = "replace_first"
	FilterStrip         = "strip"
	FilterLstrip        = "lstrip"
	FilterRstrip        = "rstrip"
	FilterStripNewlines = "strip_newlines"
	FilterNewlineToBr   = "newline_to_br"
	FilterSplit         = "split"
	FilterTruncate      = "truncate"
	FilterTruncateWords = "truncatewords"
	FilterEscape        = "escape"
	FilterEscapeOnce    = "escape_once"
	FilterURLEncode     = "url_encode"
	FilterURLDecode     = "url_decode"
	FilterDefault       = "default"
	FilterJSON          = "json"
	FilterString        = "string"
)

// Keyword argument of the default filter
const KwAllowFalse = "allow_false"

var newlinePattern = regexp.MustCompile(`\r?\n`)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func registerStringFilters(r *FilterRegistry) {
	// append(x, s): text(x) + text(s)
	r.MustRegister(&Filter{
		Name: FilterAppend, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return ToText(input) + textArg(args, 0), nil
		},
	})

	// prepend(x, s): text(s) + text(x)
	r.MustRegister(&Filter{
		Name: FilterPrepend, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return textArg(args, 0) + ToText(input), nil
		},
	})

	// capitalize(x): first character upper-cased, the rest untouched
	r.MustRegister(&Filter{
		Name: FilterCapitalize, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return capitalize(ToText(input)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterDowncase, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return strings.ToLower(ToText(input)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterUpcase, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return strings.ToUpper(ToText(input)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterRemove, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return replaceText(ToText(input), textArg(args, 0), "", -1), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterRemoveFirst, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return replaceText(ToText(input), textArg(args, 0), "", 1), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterReplace, MinArgs: 1, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			return replaceText(ToText(input), textArg(args, 0), textArg(args, 1), -1), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterReplaceFirst, MinArgs: 1, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			return replaceText(ToText(input), textArg(args, 0), textArg(args, 1), 1), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterStrip, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return strings.TrimFunc(ToText(input), unicode.IsSpace), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterLstrip, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return strings.TrimLeftFunc(ToText(input), unicode.IsSpace), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterRstrip, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return strings.TrimRightFunc(ToText(input), unicode.IsSpace), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterStripNewlines, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return newlinePattern.ReplaceAllString(ToText(input), ""), nil
		},
	})

	// newline_to_br(x): "<br />" inserted before every newline, which is kept
	r.MustRegister(&Filter{
		Name: FilterNewlineToBr, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return newlinePattern.ReplaceAllString(ToText(input), LineBreakTag+"\n"), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterSplit, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return splitText(ToText(input), textArg(args, 0)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterTruncate, MinArgs: 0, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			length := intArg(args, 0, DefaultTruncateLength)
			ellipsis := DefaultEllipsis
			if len(args) > 1 {
				ellipsis = textArg(args, 1)
			}
			return truncate(ToText(input), length, ellipsis), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterTruncateWords, MinArgs: 0, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			words := intArg(args, 0, DefaultTruncateWords)
			ellipsis := DefaultEllipsis
			if len(args) > 1 {
				ellipsis = textArg(args, 1)
			}
			return truncateWords(ToText(input), words, ellipsis), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterEscape, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return htmlEscaper.Replace(ToText(input)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterEscapeOnce, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return htmlEscaper.Replace(html.UnescapeString(ToText(input))), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterURLEncode, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return url.QueryEscape(ToText(input)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterURLDecode, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			text := ToText(input)
			decoded, err := url.QueryUnescape(text)
			if err != nil {
				return text, nil
			}
			return decoded, nil
		},
	})

	// default(x, d, allow_false: bool): d when x is nil, undefined, false
	// or empty
	r.MustRegister(&Filter{
		Name: FilterDefault, MinArgs: 0, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			var fallback any = ""
			allowFalse := false
			for _, arg := range args {
				if kw, ok := arg.(KeywordArg); ok {
					if kw.Name == KwAllowFalse {
						allowFalse = IsTruthy(kw.Value)
					}
					continue
				}
				fallback = arg
			}
			if b, ok := input.(bool); ok && !b && allowFalse {
				return input, nil
			}
			if !IsTruthy(input) || IsEmptyValue(input) {
				return fallback, nil
			}
			return input, nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterJSON, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			if IsUndefined(input) {
				input = nil
			}
			data, err := json.Marshal(input)
			if err != nil {
				return ToText(input), nil
			}
			return string(data), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterString, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return ToText(input), nil
		},
	})
}

// capitalize upper-cases the first character only
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// replaceText substitutes up to n occurrences of old (all when n < 0).
// An empty needle leaves the text untouched.
func replaceText(s, old, replacement string, n int) string {
	if old == "" {
		return s
	}
	return strings.Replace(s, old, replacement, n)
}

// splitText splits on a literal separator. Trailing empty fields are
// dropped and empty text gives an empty array. An empty separator splits
// into characters.
func splitText(s, sep string) []any {
	if s == "" {
		return []any{}
	}
	parts := strings.Split(s, sep)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

// truncate shortens s to length characters including the ellipsis. Text
// that already fits is returned unchanged. A length that leaves no room
// beyond the ellipsis yields the whole ellipsis, even when it is longer than
// length: "abcdef" | truncate: 2, "--!" is "--!", not "--".
func truncate(s string, length int, ellipsis string) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	ellipsisLen := utf8.RuneCountInString(ellipsis)
	if length <= ellipsisLen {
		if ellipsisLen == 0 {
			return ""
		}
		return ellipsis
	}
	return string(runes[:length-ellipsisLen]) + ellipsis
}

// truncateWords keeps the first n words. Words are separated by runs of
// Unicode whitespace. Text with fewer than n words is returned unchanged;
// otherwise the kept words are joined by single spaces and the ellipsis is
// appended, also when the count is exactly n.
func truncateWords(s string, n int, ellipsis string) string {
	if n <= 0 {
		n = 1
	}
	words := strings.FieldsFunc(s, unicode.IsSpace)
	if len(words) < n {
		return s
	}
	return strings.Join(words[:n], " ") + ellipsis
}

// intArg returns the argument at i as an int, or def when absent or not
// numeric
func intArg(args []any, i int, def int) int {
	if i >= len(args) {
		return def
	}
	n, ok := ToInt(ArgValue(args[i]))
	if !ok {
		return def
	}
	return n
}
