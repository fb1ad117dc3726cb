package seed

import (
	"math/rand/v2"
	"strings"
)

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud
exercitation ullamco laboris nisi aliquip ex ea commodo consequat duis aute irure in reprehenderit
voluptate velit esse cillum fugiat nulla pariatur excepteur sint occaecat cupidatat non proident
sunt culpa qui officia deserunt mollit anim id est laborum`)

// Lorem returns words pseudo-Latin words, breaking the line every
// wordsPerLine words (no breaks when wordsPerLine <= 0). Sentences start
// capitalized and end with a period.
func Lorem(r *rand.Rand, words, wordsPerLine int) string {
	if words < 1 {
		return ""
	}
	var sb strings.Builder
	sentence := 0
	sentenceLen := 5 + r.IntN(8)
	for i := 0; i < words; i++ {
		if i > 0 {
			if wordsPerLine > 0 && i%wordsPerLine == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		w := loremWords[r.IntN(len(loremWords))]
		if sentence == 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		sb.WriteString(w)
		sentence++
		if sentence == sentenceLen || i == words-1 {
			sb.WriteByte('.')
			sentence = 0
			sentenceLen = 5 + r.IntN(8)
		}
	}
	return sb.String()
}
