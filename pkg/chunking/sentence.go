package chunking

import (
	"strings"
	"unicode"
)

type Sentence struct {
	Text  string
	Index int
}

// NormalizeWhitespace collapses every whitespace run, newlines included, into
// a single space and trims both ends.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitSentences cuts text after '.', '!' or '?' when the terminator is
// followed by whitespace and a letter. Abbreviations such as "Dr." are split
// like any other terminator.
func SplitSentences(text string) []Sentence {
	normalized := NormalizeWhitespace(text)
	sentences := []Sentence{}
	if normalized == "" {
		return sentences
	}

	runes := []rune(normalized)
	start := 0
	add := func(fragment []rune) {
		s := strings.TrimSpace(string(fragment))
		if s != "" {
			sentences = append(sentences, Sentence{Text: s, Index: len(sentences)})
		}
	}

	for i := 0; i+2 < len(runes); i++ {
		if isTerminator(runes[i]) && runes[i+1] == ' ' && unicode.IsLetter(runes[i+2]) {
			add(runes[start : i+1])
			start = i + 2
		}
	}
	add(runes[start:])

	return sentences
}

// Texts projects the sentence strings in order.
func Texts(sentences []Sentence) []string {
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	return texts
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
