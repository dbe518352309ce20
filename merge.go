package settings

// MergeSection returns a new document with partial shallow-merged into the
// named section of doc. Existing keys of the section that partial does not
// name are preserved; keys present in partial overwrite wholesale, so a
// nested map in partial replaces the previous nested value rather than
// merging into it. All other sections carry through untouched, including
// unknown ones.
func MergeSection(doc Document, section string, partial map[string]any) Document {
	merged := doc.Clone()
	if merged == nil {
		merged = NewDocument()
	}
	payload, ok := merged[section]
	if !ok {
		payload = make(map[string]any, len(partial))
		merged[section] = payload
	}
	for key, value := range partial {
		payload[key] = cloneAny(value)
	}
	return merged
}

func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = cloneAny(value)
	}
	return out
}

func cloneAny(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return clonePayload(v)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneAny(v[i])
		}
		return out
	default:
		return value
	}
}
