package topics

import "strings"

// stopwords covers common English function words plus web/UI noise terms
// that would otherwise dominate term frequencies.
var stopwords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "all": {}, "also": {},
	"and": {}, "another": {}, "any": {}, "are": {}, "because": {}, "been": {},
	"before": {}, "being": {}, "below": {}, "between": {}, "both": {}, "but": {},
	"can": {}, "cannot": {}, "could": {}, "did": {}, "does": {}, "doing": {},
	"down": {}, "during": {}, "each": {}, "few": {}, "for": {}, "from": {},
	"further": {}, "had": {}, "has": {}, "have": {}, "having": {}, "her": {},
	"here": {}, "hers": {}, "him": {}, "his": {}, "how": {}, "into": {},
	"its": {}, "itself": {}, "just": {}, "like": {}, "more": {}, "most": {},
	"not": {}, "now": {}, "off": {}, "once": {}, "only": {}, "other": {},
	"our": {}, "ours": {}, "out": {}, "over": {}, "own": {}, "same": {},
	"she": {}, "should": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "theirs": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "too": {},
	"under": {}, "until": {}, "very": {}, "was": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "who": {}, "whom": {},
	"why": {}, "will": {}, "with": {}, "would": {}, "you": {}, "your": {},
	"yours": {},

	// Web/UI noise
	"click": {}, "button": {}, "link": {}, "menu": {}, "page": {}, "pages": {},
	"website": {}, "site": {}, "home": {}, "homepage": {}, "search": {},
	"loading": {}, "cookie": {}, "cookies": {}, "privacy": {}, "terms": {},
	"login": {}, "signup": {}, "subscribe": {},
}

// IsStopword checks if a word should be filtered from frequency analysis.
func IsStopword(word string) bool {
	_, exists := stopwords[strings.ToLower(word)]
	return exists
}
