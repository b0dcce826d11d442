package index

import "strings"

// MinTokenLength is the shortest letter run that becomes an indexed term.
const MinTokenLength = 3

// Tokenize splits text into lowercased runs of ASCII letters, keeping runs of
// at least MinTokenLength bytes. Tokens appear in order of occurrence and
// duplicates are preserved; callers that need a set dedupe themselves.
// Documents, facts and queries all go through this same rule so term matches
// stay symmetric.
func Tokenize(text string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(text); i++ {
		if IsASCIILetter(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= MinTokenLength {
			tokens = append(tokens, strings.ToLower(text[start:i]))
		}
		start = -1
	}
	if start >= 0 && len(text)-start >= MinTokenLength {
		tokens = append(tokens, strings.ToLower(text[start:]))
	}
	return tokens
}

// IsASCIILetter reports whether b is in [A-Za-z]. Token extraction and
// whole-word boundary checks share this definition.
func IsASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
