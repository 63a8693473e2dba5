package parser

// Repair rewrites near-JSON into JSON: single-quoted strings become
// double-quoted, bare object keys are quoted, trailing commas are dropped
// and unclosed strings, objects and arrays are closed. Valid JSON passes
// through unchanged.
func Repair(s string) string {
	out := make([]byte, 0, len(s)+8)
	var (
		stack   []byte
		quote   byte
		escaped bool
		last    byte // last significant byte written outside strings
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
				out = append(out, c)
			case c == '\\':
				escaped = true
				out = append(out, c)
			case c == quote:
				quote = 0
				out = append(out, '"')
				last = '"'
			case c == '"':
				out = append(out, '\\', '"')
			default:
				out = append(out, c)
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			out = append(out, '"')
		case c == '{' || c == '[':
			stack = append(stack, c)
			out = append(out, c)
			last = c
		case c == '}' || c == ']':
			out = trimTrailingComma(out)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			out = append(out, c)
			last = c
		case (last == '{' || last == ',') && isIdentStart(c):
			j := i
			for j < len(s) && isIdent(s[j]) {
				j++
			}
			k := j
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				out = append(out, '"')
				out = append(out, s[i:j]...)
				out = append(out, '"')
				last = '"'
			} else {
				out = append(out, s[i:j]...)
				last = s[j-1]
			}
			i = j - 1
		default:
			out = append(out, c)
			if !isSpace(c) {
				last = c
			}
		}
	}

	if quote != 0 {
		out = append(out, '"')
		last = '"'
	}
	if last == ':' {
		out = append(out, "null"...)
	}
	out = trimTrailingComma(out)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out = append(out, '}')
		} else {
			out = append(out, ']')
		}
	}
	return string(out)
}

func trimTrailingComma(b []byte) []byte {
	end := len(b)
	for end > 0 && isSpace(b[end-1]) {
		end--
	}
	if end > 0 && b[end-1] == ',' {
		return b[:end-1]
	}
	return b
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
