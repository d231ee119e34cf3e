package canonical

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Input is the merged raw extraction for one document plus its verbatim
// per-page text in page order.
type Input struct {
	Raw       map[string]interface{}
	PageTexts []string
}

// JoinedText returns the non-empty page texts joined in page order.
func (in Input) JoinedText() string {
	return joinText(in.PageTexts)
}

func joinText(parts []string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// str reads a scalar as a trimmed string. Objects and arrays read as absent.
func str(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	return scalarString(m[key])
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func obj(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]interface{})
	return o
}

func list(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	l, _ := m[key].([]interface{})
	return l
}

// strList reads an array of scalars, skipping blanks. A bare scalar is not
// promoted to a one-element list.
func strList(m map[string]interface{}, key string) []string {
	var out []string
	for _, v := range list(m, key) {
		if s := scalarString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func objList(m map[string]interface{}, key string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, v := range list(m, key) {
		if o, ok := v.(map[string]interface{}); ok {
			out = append(out, o)
		}
	}
	return out
}

// number reads a numeric value. Numeric strings are accepted with a trailing
// percent sign or thousands separators stripped.
func number(m map[string]interface{}, key string) *float64 {
	if m == nil {
		return nil
	}
	var s string
	switch t := m[key].(type) {
	case json.Number:
		s = t.String()
	case float64:
		return &t
	case string:
		s = strings.TrimSuffix(strings.TrimSpace(t), "%")
		s = strings.ReplaceAll(s, ",", "")
	default:
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

// unionStrings appends values from next not already present, comparing case
// and whitespace insensitively and keeping the first spelling seen.
func unionStrings(acc []string, next []string) []string {
	seen := make(map[string]bool, len(acc))
	for _, s := range acc {
		seen[normalizeKey(s)] = true
	}
	for _, s := range next {
		k := normalizeKey(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		acc = append(acc, s)
	}
	return acc
}

// normalizeKey uppercases and collapses whitespace, for form codes and
// list membership checks.
func normalizeKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
