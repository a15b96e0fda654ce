package scan

import "strings"

// ParseResponse parses a model response in the format
// "name | strength | form | expiry". Preamble lines the model sometimes adds
// are skipped; the first line with at least one pipe and a non-empty name
// wins. Lines without a pipe are indistinguishable from preamble.
func ParseResponse(raw string) Label {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "|") {
			continue
		}
		if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "I see") || strings.HasPrefix(line, "Based on") {
			continue
		}

		parts := strings.Split(line, "|")
		label := Label{Name: strings.TrimSpace(parts[0])}
		if label.Name == "" {
			continue
		}
		if len(parts) >= 2 {
			label.Strength = strings.TrimSpace(parts[1])
		}
		if len(parts) >= 3 {
			label.Form = strings.TrimSpace(parts[2])
		}
		if len(parts) >= 4 {
			label.Expiry = strings.TrimSpace(parts[3])
		}
		return label
	}
	return Label{}
}
