package utils

import (
	"encoding/json"
	"fmt"
)

// Keys a file input value carries beyond its metadata. These are stripped
// before a draft is persisted; binary content never reaches storage.
var fileContentKeys = []string{"content", "data", "dataUrl", "blob"}

// SanitizeFormData returns a copy of form safe to persist: file values are
// reduced to their metadata and fields that cannot be serialized are
// dropped individually instead of failing the whole save. The second
// return value lists the dropped field names.
func SanitizeFormData(form map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(form))
	var dropped []string

	for key, value := range form {
		sanitized, ok := sanitizeValue(value)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		out[key] = sanitized
	}

	return out, dropped
}

func sanitizeValue(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		if isFileValue(v) {
			return fileMetadataValue(v), true
		}
		nested := make(map[string]any, len(v))
		for key, inner := range v {
			sanitized, ok := sanitizeValue(inner)
			if !ok {
				continue
			}
			nested[key] = sanitized
		}
		return nested, true
	case []any:
		list := make([]any, 0, len(v))
		for _, inner := range v {
			sanitized, ok := sanitizeValue(inner)
			if !ok {
				continue
			}
			list = append(list, sanitized)
		}
		return list, true
	default:
		if _, err := json.Marshal(v); err != nil {
			return nil, false
		}
		return v, true
	}
}

func isFileValue(v map[string]any) bool {
	if _, ok := v["name"]; !ok {
		return false
	}
	if _, ok := v["size"]; !ok {
		return false
	}
	for _, key := range fileContentKeys {
		if _, ok := v[key]; ok {
			return true
		}
	}
	_, hasType := v["type"]
	return hasType
}

func fileMetadataValue(v map[string]any) map[string]any {
	meta := map[string]any{
		"name": v["name"],
		"size": v["size"],
	}
	if t, ok := v["type"]; ok {
		meta["type"] = t
	}
	if lm, ok := v["lastModified"]; ok {
		meta["lastModified"] = lm
	}
	return meta
}

// ApplicantNameFromForm derives the summary display name from the common
// wizard field names.
func ApplicantNameFromForm(form map[string]any) string {
	first := stringField(form, "firstName", "first_name")
	last := stringField(form, "lastName", "last_name")
	switch {
	case first != "" && last != "":
		return fmt.Sprintf("%s %s", first, last)
	case first != "":
		return first
	case last != "":
		return last
	}
	return ""
}

func EmailFromForm(form map[string]any) string {
	return stringField(form, "email", "emailAddress")
}

func stringField(form map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := form[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// MissingFromSubmission returns the required fields absent or empty in the
// submitted map. Used for the all-or-nothing completion-link consumption.
func MissingFromSubmission(required []string, submitted map[string]any) []string {
	var missing []string
	for _, field := range required {
		value, ok := submitted[field]
		if !ok || value == nil {
			missing = append(missing, field)
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
