package sentiment

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 5

var cryptoTerms = map[string]struct{}{
	"bitcoin": {}, "btc": {}, "ethereum": {}, "eth": {}, "crypto": {}, "blockchain": {},
	"cryptocurrency": {}, "token": {}, "altcoin": {}, "defi": {}, "mining": {},
	"wallet": {}, "exchange": {}, "trading": {}, "market": {}, "bull": {}, "bear": {},
}

var stopWords = map[string]struct{}{
	"the": {}, "be": {}, "to": {}, "of": {}, "and": {}, "a": {}, "in": {}, "that": {}, "have": {}, "i": {},
	"it": {}, "for": {}, "not": {}, "on": {}, "with": {}, "he": {}, "as": {}, "you": {}, "do": {}, "at": {},
}

// CryptoKeywords returns up to five domain terms longer than three characters,
// most frequent first, ties in order of first appearance.
func CryptoKeywords(text string) []string {
	return topByFrequency(tokenize(text), func(w string) bool {
		if len(w) <= 3 {
			return false
		}
		_, ok := cryptoTerms[w]
		return ok
	})
}

// CommonKeywords strips punctuation, drops stop words and returns the five
// most frequent remaining words.
func CommonKeywords(text string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	return topByFrequency(strings.Fields(clean), func(w string) bool {
		_, stop := stopWords[w]
		return !stop
	})
}

func topByFrequency(words []string, keep func(string) bool) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if !keep(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}
