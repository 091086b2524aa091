package llm

import (
	"fmt"
	"strings"
)

// FirstJSONBlock locates the first balanced JSON object or array in free
// text. Completion services wrap JSON in prose or code fences often enough
// that the response is treated as untrusted and scanned rather than parsed
// verbatim.
func FirstJSONBlock(s string) (string, error) {
	objIdx := strings.IndexByte(s, '{')
	arrIdx := strings.IndexByte(s, '[')

	start := objIdx
	open, closeB := byte('{'), byte('}')
	if start == -1 || (arrIdx != -1 && arrIdx < start) {
		start = arrIdx
		open, closeB = '[', ']'
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON block found")
	}
	return balancedFrom(s, start, open, closeB)
}

// FirstJSONObject locates the first balanced {...} block, ignoring arrays.
func FirstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	return balancedFrom(s, start, '{', '}')
}

// FirstJSONArray locates the first balanced [...] block.
func FirstJSONArray(s string) (string, error) {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return "", fmt.Errorf("no JSON array found")
	}
	return balancedFrom(s, start, '[', ']')
}

func balancedFrom(s string, start int, open, closeB byte) (string, error) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closeB:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON block starting at offset %d", start)
}
