package analyzer

import "strings"

// stem applies a light English suffix-stripping stemmer. It is not a full
// Porter implementation; it collapses the inflections that matter for
// recall on prose (plurals, -ing/-ed forms, common noun suffixes) while
// never reducing a word below three characters.
func stem(word string) string {
	if len(word) < 4 {
		return word
	}

	// Plurals and third-person forms.
	switch {
	case strings.HasSuffix(word, "sses"):
		word = word[:len(word)-2]
	case strings.HasSuffix(word, "ies"):
		word = word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ss"):
		// keep: "class", "process"
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "us") && !strings.HasSuffix(word, "is"):
		word = word[:len(word)-1]
	}

	// Verbal suffixes. Only strip when a vowel remains in the stem so
	// words like "sing" or "red" survive intact.
	for _, suf := range []string{"ingly", "edly", "ing", "ed"} {
		if strings.HasSuffix(word, suf) {
			base := word[:len(word)-len(suf)]
			if len(base) >= 3 && hasVowel(base) {
				word = undouble(base)
				break
			}
		}
	}

	// Common noun/adjective suffixes.
	for _, s := range [...]struct{ suf, repl string }{
		{"ational", "ate"},
		{"ization", "ize"},
		{"fulness", "ful"},
		{"ousness", "ous"},
		{"iveness", "ive"},
		{"ation", "ate"},
		{"ments", "ment"},
		{"ness", ""},
		{"ally", "al"},
	} {
		if strings.HasSuffix(word, s.suf) {
			base := word[:len(word)-len(s.suf)] + s.repl
			if len(base) >= 3 {
				word = base
			}
			break
		}
	}

	// Drop a trailing silent e so paired forms meet at the same term
	// ("indexes" -> "indexe" -> "index", "database(s)" -> "databas").
	if len(word) >= 5 && strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "ee") {
		word = word[:len(word)-1]
	}

	return word
}

// undouble collapses a trailing doubled consonant left by suffix removal
// ("stopp" -> "stop") except for l, s, z where doubling is standard.
func undouble(word string) string {
	n := len(word)
	if n < 2 || word[n-1] != word[n-2] {
		return word
	}
	switch word[n-1] {
	case 'l', 's', 'z', 'e':
		return word
	}
	if isVowelByte(word[n-1]) {
		return word
	}
	return word[:n-1]
}

func hasVowel(word string) bool {
	for i := 0; i < len(word); i++ {
		if isVowelByte(word[i]) {
			return true
		}
	}
	return false
}

func isVowelByte(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
