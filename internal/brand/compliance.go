package brand

import "fmt"

// ValidateCompliance checks a loaded brand against its own compliance rules:
// every color named in compliance.required_colors must appear in the colors
// section, every font in compliance.required_fonts must be the primary or
// secondary typography font, and the color count must not exceed
// compliance.max_color_variations. Purely advisory — returns warnings,
// never blocks.
func (r *Registry) ValidateCompliance(b *Brand) []string {
	warnings := []string{}
	if len(b.Compliance) == 0 {
		return warnings
	}

	for _, color := range stringList(b.Compliance["required_colors"]) {
		if _, ok := b.Colors[color]; !ok {
			warnings = append(warnings, fmt.Sprintf("missing required color: %s", color))
		}
	}

	available := map[string]bool{
		stringField(b.Typography, "primary_font", ""):   true,
		stringField(b.Typography, "secondary_font", ""): true,
	}
	for _, font := range stringList(b.Compliance["required_fonts"]) {
		if !available[font] {
			warnings = append(warnings, fmt.Sprintf("missing required font: %s", font))
		}
	}

	if maxRaw, ok := b.Compliance["max_color_variations"]; ok {
		if max, ok := intValue(maxRaw); ok && len(b.Colors) > max {
			warnings = append(warnings, fmt.Sprintf("too many color variations: %d > %d", len(b.Colors), max))
		}
	}

	return warnings
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
