package project

import "strings"

// ExpandVariables substitutes SQLCMD $(Name) references with their project
// defaults. References with no binding are left in place so the parser's
// diagnostics point at the original text.
func ExpandVariables(src string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(src, "$(") {
		return src
	}

	var sb strings.Builder
	sb.Grow(len(src))
	for {
		start := strings.Index(src, "$(")
		if start < 0 {
			sb.WriteString(src)
			return sb.String()
		}
		end := strings.IndexByte(src[start:], ')')
		if end < 0 {
			sb.WriteString(src)
			return sb.String()
		}
		end += start

		name := src[start+2 : end]
		if val, ok := lookupVariable(vars, name); ok {
			sb.WriteString(src[:start])
			sb.WriteString(val)
		} else {
			sb.WriteString(src[:end+1])
		}
		src = src[end+1:]
	}
}

// lookupVariable matches SQLCMD's case-insensitive variable names.
func lookupVariable(vars map[string]string, name string) (string, bool) {
	if val, ok := vars[name]; ok {
		return val, true
	}
	for k, v := range vars {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
