package report

import (
	"sort"
	"strings"
)

// stopwords are filtered out of caption keyword analysis. Mostly
// English function words plus the hashtag filler that shows up on
// nearly every post.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "again": {}, "all": {}, "also": {},
	"am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"but": {}, "by": {},
	"can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "even": {}, "ever": {}, "every": {},
	"few": {}, "for": {}, "from": {},
	"get": {}, "got": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {},
	"here": {}, "hers": {}, "him": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"just": {},
	"like": {},
	"me": {}, "more": {}, "most": {}, "my": {},
	"no": {}, "not": {}, "now": {},
	"of": {}, "off": {}, "on": {}, "once": {}, "one": {}, "only": {},
	"or": {}, "other": {}, "our": {}, "out": {}, "over": {},
	"same": {}, "she": {}, "should": {}, "so": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "too": {},
	"under": {}, "until": {}, "up": {}, "us": {},
	"very": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"would": {},
	"you": {}, "your": {},

	// Hashtag filler seen on nearly every clip.
	"fyp": {}, "foryou": {}, "foryoupage": {}, "viral": {}, "trending": {},
	"video": {}, "follow": {}, "tiktok": {},
}

// KeywordFrequency counts non-stopword words across captions. Words
// are lowercased and stripped of punctuation; a leading '#' is
// dropped so hashtags count as their bare word.
func KeywordFrequency(captions []string) map[string]int {
	frequencies := make(map[string]int)
	for _, caption := range captions {
		for _, word := range strings.Fields(strings.ToLower(caption)) {
			word = strings.TrimPrefix(word, "#")
			word = strings.TrimFunc(word, func(r rune) bool {
				return ('a' > r || r > 'z') && ('0' > r || r > '9')
			})
			if _, skip := stopwords[word]; skip || word == "" {
				continue
			}
			frequencies[word]++
		}
	}
	return frequencies
}

type keywordCount struct {
	Word  string
	Count int
}

// TopKeywords returns the n most frequent caption keywords, most
// frequent first, ties broken alphabetically.
func TopKeywords(captions []string, n int) []string {
	frequencies := KeywordFrequency(captions)

	counts := make([]keywordCount, 0, len(frequencies))
	for k, v := range frequencies {
		counts = append(counts, keywordCount{k, v})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})

	limit := n
	if len(counts) < n {
		limit = len(counts)
	}

	top := make([]string, limit)
	for i := 0; i < limit; i++ {
		top[i] = counts[i].Word
	}
	return top
}
