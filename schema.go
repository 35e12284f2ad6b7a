package quotemill

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldKind selects the validation and sanitization rules for one field.
type FieldKind int

const (
	// FieldString is a free-text field, trimmed and length-capped.
	FieldString FieldKind = iota
	// FieldURL must parse as an absolute http(s) URL and is canonicalized
	// by reparsing and reserializing it.
	FieldURL
	// FieldStringArray is a list of strings; entries are trimmed and empty
	// entries dropped.
	FieldStringArray
)

// Field declares one attribute of a content type's schema.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	MaxLen   int // maximum length for string fields, 0 = unlimited
}

// NormalizeAttributes validates raw input against a schema and returns the
// sanitized payload. Every field is checked independently; all violations
// are accumulated and reported together. Unknown input keys are dropped.
// Normalizing an already-normalized payload yields an identical payload.
func NormalizeAttributes(schema []Field, raw map[string]any) (map[string]any, ValidationErrors) {
	out := make(map[string]any, len(schema))
	var errs ValidationErrors

	for _, f := range schema {
		val, ok := raw[f.Name]
		if !ok || val == nil {
			if f.Required {
				errs = append(errs, FieldError{
					Field:   f.Name,
					Message: fmt.Sprintf("missing required field: %s", f.Name),
				})
			}
			continue
		}

		switch f.Kind {
		case FieldString:
			s, err := normalizeString(f, val)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			if s == "" {
				if f.Required {
					errs = append(errs, FieldError{
						Field:   f.Name,
						Message: fmt.Sprintf("missing required field: %s", f.Name),
					})
				}
				continue
			}
			out[f.Name] = s

		case FieldURL:
			s, err := normalizeURL(f, val)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			if s == "" {
				if f.Required {
					errs = append(errs, FieldError{
						Field:   f.Name,
						Message: fmt.Sprintf("missing required field: %s", f.Name),
					})
				}
				continue
			}
			out[f.Name] = s

		case FieldStringArray:
			arr, err := normalizeStringArray(f, val)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			if len(arr) > 0 {
				out[f.Name] = arr
			}
		}
	}

	return out, errs
}

func normalizeString(f Field, val any) (string, *FieldError) {
	s, ok := val.(string)
	if !ok {
		return "", &FieldError{Field: f.Name, Message: "must be a string"}
	}
	s = strings.TrimSpace(s)
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return "", &FieldError{
			Field:   f.Name,
			Message: fmt.Sprintf("must be at most %d characters", f.MaxLen),
		}
	}
	return s, nil
}

func normalizeURL(f Field, val any) (string, *FieldError) {
	s, ok := val.(string)
	if !ok {
		return "", &FieldError{Field: f.Name, Message: "must be a string"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &FieldError{Field: f.Name, Message: "must be a valid absolute URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &FieldError{Field: f.Name, Message: "must use http or https"}
	}
	// Canonical form is whatever net/url reserializes to.
	return u.String(), nil
}

func normalizeStringArray(f Field, val any) ([]string, *FieldError) {
	var raw []string
	switch v := val.(type) {
	case []string:
		raw = v
	case []any:
		raw = make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, &FieldError{Field: f.Name, Message: "must be an array of strings"}
			}
			raw = append(raw, s)
		}
	default:
		return nil, &FieldError{Field: f.Name, Message: "must be an array of strings"}
	}
	return FilterEmpty(raw), nil
}

// SourceDomain extracts the host from a canonicalized URL, without any
// leading "www.". Returns "" when the URL does not parse.
func SourceDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// Truncate shortens s to at most max runes, cutting at a word boundary when
// one is close enough and appending an ellipsis.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
