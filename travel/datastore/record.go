package datastore

import "strings"

// Record is one scraped content entry. The scraper emits free-form objects;
// only a few well-known fields are interpreted here.
type Record map[string]any

// Name returns the record's display name. Records scraped from listing pages
// sometimes carry "title" instead of "name"; title is the fallback.
func (r Record) Name() string {
	if s := r.Text("name"); s != "" {
		return s
	}
	return r.Text("title")
}

// Description returns the record's description, or an empty string.
func (r Record) Description() string {
	return r.Text("description")
}

// Text returns the trimmed string value of a field, or an empty string when
// the field is absent or not a string.
func (r Record) Text(key string) string {
	s, ok := r[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Strings returns the string elements of an array-valued field.
func (r Record) Strings(key string) []string {
	arr, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
