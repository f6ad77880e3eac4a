package brand

import "strconv"

// Document is a brand or template configuration: a nested structure of
// mappings, sequences, and scalars as decoded from YAML. The raw document is
// the authoritative on-disk representation; typed views are derived from it.
type Document map[string]any

// DeepCopy returns a copy of the document that shares no mutable state with
// the original.
func (d Document) DeepCopy() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = deepCopyValue(v)
	}
	return out
}

// Section returns the named top-level section if it is a nested mapping.
func (d Document) Section(name string) (Document, bool) {
	v, ok := d[name]
	if !ok {
		return nil, false
	}
	return asDocument(v)
}

// StringSection returns the named section with all scalar values rendered as
// strings. Non-scalar values are skipped.
func (d Document) StringSection(name string) map[string]string {
	sec, ok := d.Section(name)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(sec))
	for k, v := range sec {
		if s, ok := scalarString(v); ok {
			out[k] = s
		}
	}
	return out
}

// Merge recursively combines two documents. For each key in overlay: if both
// sides hold nested mappings the mappings are merged, otherwise the overlay
// value replaces the base value entirely. Lists and scalars are never merged
// element-wise. Merge is pure: neither input is modified and the result
// shares no state with either.
func Merge(base, overlay Document) Document {
	result := base.DeepCopy()
	if result == nil {
		result = Document{}
	}
	for key, overlayValue := range overlay {
		baseSub, baseIsDoc := asDocument(result[key])
		overlaySub, overlayIsDoc := asDocument(overlayValue)
		if baseIsDoc && overlayIsDoc {
			result[key] = map[string]any(Merge(baseSub, overlaySub))
			continue
		}
		result[key] = deepCopyValue(overlayValue)
	}
	return result
}

// asDocument converts a value to a Document if it is a nested mapping.
// YAML decoding produces map[string]any for mappings with string keys.
func asDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	default:
		return nil, false
	}
}

// scalarString renders scalar YAML values (strings, numbers, booleans) as
// strings. Mappings and sequences are not scalars.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	default:
		return "", false
	}
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case Document:
		return map[string]any(val.DeepCopy())
	case map[string]any:
		return map[string]any(Document(val).DeepCopy())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
