package codegen

import "strings"

// encodeSelector renders a component/directive selector string into the
// runtime's nested-array encoding: one inner array per comma-separated
// disjunct, each holding the element name (or "" for any) followed by
// alternating attribute name/value pairs.
// Class selectors encode as a ("class", name) attribute pair.
func encodeSelector(selector string) string {
	if strings.TrimSpace(selector) == "" {
		return "[]"
	}
	var disjuncts []string
	for _, part := range strings.Split(selector, ",") {
		disjuncts = append(disjuncts, encodeCompound(strings.TrimSpace(part)))
	}
	return "[" + strings.Join(disjuncts, ", ") + "]"
}

func encodeCompound(sel string) string {
	tag := ""
	var pairs [][2]string
	i := 0
	for i < len(sel) {
		switch sel[i] {
		case '[':
			end := strings.IndexByte(sel[i:], ']')
			if end < 0 {
				i = len(sel)
				break
			}
			inner := sel[i+1 : i+end]
			name, value := inner, ""
			if eq := strings.IndexByte(inner, '='); eq >= 0 {
				name, value = inner[:eq], strings.Trim(inner[eq+1:], `"'`)
			}
			pairs = append(pairs, [2]string{name, value})
			i += end + 1
		case '.':
			j := i + 1
			for j < len(sel) && isSelectorNameChar(sel[j]) {
				j++
			}
			pairs = append(pairs, [2]string{"class", sel[i+1 : j]})
			i = j
		default:
			j := i
			for j < len(sel) && isSelectorNameChar(sel[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			tag = sel[i:j]
			i = j
		}
	}
	parts := []string{jsString(tag)}
	for _, p := range pairs {
		parts = append(parts, jsString(p[0]), jsString(p[1]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func isSelectorNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}
