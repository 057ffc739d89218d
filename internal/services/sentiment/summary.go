package sentiment

import (
	"regexp"
	"strings"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Summarize picks the longest sentence of the description. An empty
// description yields the title unchanged; a description without sentence
// terminators is returned trimmed.
func Summarize(title, description string) string {
	if description == "" {
		return title
	}

	sentences := sentenceRe.FindAllString(description, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(description)
	}

	longest := sentences[0]
	for _, s := range sentences[1:] {
		if len(s) > len(longest) {
			longest = s
		}
	}
	return strings.TrimSpace(longest)
}
