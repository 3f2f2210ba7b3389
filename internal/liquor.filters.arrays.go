package internal

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Array filter names
const (
	FilterConcat      = "concat"
	FilterFirst       = "first"
	FilterLast        = "last"
	FilterJoin        = "join"
	FilterReverse     = "reverse"
	FilterSort        = "sort"
	FilterSortNatural = "sort_natural"
	FilterUniq        = "uniq"
	FilterCompact     = "compact"
	FilterMap         = "map"
	FilterWhere       = "where"
	FilterSize        = "size"
	FilterSlice       = "slice"
)

// Default separator of the join filter
const DefaultJoinSeparator = " "

func registerArrayFilters(r *FilterRegistry) {
	// concat(a, b): elements of a followed by elements of b, as a new array
	r.MustRegister(&Filter{
		Name: FilterConcat, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			left := ToList(input)
			right := ToList(argAt(args, 0, nil))
			out := make([]any, 0, len(left)+len(right))
			out = append(out, left...)
			return append(out, right...), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterFirst, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			if s, ok := input.(string); ok {
				return textProperty(s, PropFirst), nil
			}
			return Property(input, PropFirst), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterLast, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			if s, ok := input.(string); ok {
				return textProperty(s, PropLast), nil
			}
			return Property(input, PropLast), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterJoin, MinArgs: 0, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			arr, ok := AsArray(input)
			if !ok {
				return ToText(input), nil
			}
			sep := DefaultJoinSeparator
			if len(args) > 0 {
				sep = textArg(args, 0)
			}
			parts := make([]string, len(arr))
			for i, item := range arr {
				parts[i] = ToText(item)
			}
			return strings.Join(parts, sep), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterReverse, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			arr, ok := AsArray(input)
			if !ok {
				return input, nil
			}
			out := make([]any, len(arr))
			for i, item := range arr {
				out[len(arr)-1-i] = item
			}
			return out, nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterSort, MinArgs: 0, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return sortArray(input, args, false), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterSortNatural, MinArgs: 0, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return sortArray(input, args, true), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterUniq, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			arr, ok := AsArray(input)
			if !ok {
				return input, nil
			}
			out := make([]any, 0, len(arr))
			for _, item := range arr {
				seen := false
				for _, kept := range out {
					if Equal(kept, item) {
						seen = true
						break
					}
				}
				if !seen {
					out = append(out, item)
				}
			}
			return out, nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterCompact, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			arr, ok := AsArray(input)
			if !ok {
				return input, nil
			}
			out := make([]any, 0, len(arr))
			for _, item := range arr {
				if !IsNilish(item) {
					out = append(out, item)
				}
			}
			return out, nil
		},
	})

	// map(arr, prop): the prop of every element
	r.MustRegister(&Filter{
		Name: FilterMap, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			prop := textArg(args, 0)
			arr := ToList(input)
			out := make([]any, len(arr))
			for i, item := range arr {
				out[i] = Property(item, prop)
			}
			return out, nil
		},
	})

	// where(arr, prop, value): elements whose prop equals value, or is
	// truthy when no value is given
	r.MustRegister(&Filter{
		Name: FilterWhere, MinArgs: 1, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			prop := textArg(args, 0)
			arr := ToList(input)
			out := make([]any, 0, len(arr))
			for _, item := range arr {
				v := Property(item, prop)
				if len(args) > 1 {
					if Equal(v, argAt(args, 1, nil)) {
						out = append(out, item)
					}
					continue
				}
				if IsTruthy(v) {
					out = append(out, item)
				}
			}
			return out, nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterSize, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return Length(input), nil
		},
	})

	// slice(x, offset, length=1): a sub-array or substring; a negative
	// offset counts from the end
	r.MustRegister(&Filter{
		Name: FilterSlice, MinArgs: 1, MaxArgs: 2,
		Fn: func(input any, args []any) (any, error) {
			offset := intArg(args, 0, 0)
			length := intArg(args, 1, 1)
			if arr, ok := AsArray(input); ok {
				start, end := sliceBounds(len(arr), offset, length)
				out := make([]any, end-start)
				copy(out, arr[start:end])
				return out, nil
			}
			text := ToText(input)
			runes := []rune(text)
			start, end := sliceBounds(utf8.RuneCountInString(text), offset, length)
			return string(runes[start:end]), nil
		},
	})
}

// sliceBounds clamps an offset/length pair to [0, n]
func sliceBounds(n, offset, length int) (int, int) {
	if offset < 0 {
		offset += n
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + length
	if length < 0 || end < offset {
		end = offset
	}
	if end > n {
		end = n
	}
	return offset, end
}

// sortArray sorts a copy of the array, optionally by a property. Numbers
// sort numerically, everything else by text; natural sorting ignores case.
// Nil and undefined keys sort last.
func sortArray(input any, args []any, natural bool) any {
	arr, ok := AsArray(input)
	if !ok {
		return input
	}
	out := make([]any, len(arr))
	copy(out, arr)

	key := func(item any) any {
		if len(args) > 0 {
			return Property(item, textArg(args, 0))
		}
		return item
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if IsNilish(a) || IsNilish(b) {
			return !IsNilish(a) && IsNilish(b)
		}
		if KindOf(a) == KindNumber && KindOf(b) == KindNumber {
			c, _ := Compare(a, b)
			return c < 0
		}
		sa, sb := ToText(a), ToText(b)
		if natural {
			sa, sb = strings.ToLower(sa), strings.ToLower(sb)
		}
		return sa < sb
	})
	return out
}
