package topics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Blend weights and bands are product policy constants.
const (
	coverageWeight  = 0.40
	questionWeight  = 0.30
	structureWeight = 0.30

	// TopTermCount bounds the returned frequency list.
	TopTermCount = 20

	minTokenLen = 3
)

var (
	tokenPattern      = regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]+`)
	questionPattern   = regexp.MustCompile(`(?i)\b(what|how|why|when|which|who|where|can|should|does)\b[^.?!]{3,80}\?`)
	comparisonPattern = regexp.MustCompile(`(?i)\b(vs\.?|versus|compared to|comparison|better than|pros and cons|alternatives?)\b`)
)

// TermCount is one entry of the term-frequency table.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Analysis is the topical-coverage result for a page set.
type Analysis struct {
	TopTerms        []TermCount `json:"top_terms"`
	Coverage        float64     `json:"coverage"`         // seed coverage or diversity proxy
	QuestionDensity float64     `json:"question_density"` // 0-1 normalized
	StructureScore  float64     `json:"structure_score"`  // 0-1 normalized
	Blend           float64     `json:"blend"`
	Score           int         `json:"score"` // 0-3 band
}

// Analyze tokenizes the page bodies, computes term frequencies and scores
// topical depth. seeds are explicit topic terms (from the site description or
// homepage); when empty, term diversity is used as a coverage proxy.
func Analyze(htmls []string, seeds []string) *Analysis {
	a := &Analysis{}
	if len(htmls) == 0 {
		return a
	}

	freq := make(map[string]int)
	totalTokens := 0
	questions := 0
	structures := 0
	comparisons := false

	for _, html := range htmls {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		doc.Find("script, style, noscript").Remove()

		text := doc.Text()
		for _, raw := range tokenPattern.FindAllString(text, -1) {
			token := strings.ToLower(raw)
			if len(token) < minTokenLen || IsStopword(token) {
				continue
			}
			freq[token]++
			totalTokens++
		}

		questions += len(questionPattern.FindAllString(text, -1))
		// Question-style headings count even without a question mark body.
		doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
			if isQuestionHeading(s.Text()) {
				questions++
			}
		})

		structures += doc.Find("ul, ol, table, dl").Length()
		if comparisonPattern.MatchString(text) {
			comparisons = true
		}
	}

	a.TopTerms = topTerms(freq, TopTermCount)
	a.Coverage = coverage(freq, totalTokens, seeds)
	a.QuestionDensity = clamp01(float64(questions) / 5)
	a.StructureScore = clamp01(float64(structures) / 5)
	if comparisons && a.StructureScore < 1 {
		a.StructureScore = clamp01(a.StructureScore + 0.2)
	}

	a.Blend = coverageWeight*a.Coverage + questionWeight*a.QuestionDensity + structureWeight*a.StructureScore
	a.Score = band(a.Blend)
	return a
}

var questionHeadingPrefix = regexp.MustCompile(`(?i)^\s*(what|how|why|when|which|who|where|can|should|does|is|are)\b`)

func isQuestionHeading(text string) bool {
	return questionHeadingPrefix.MatchString(text)
}

// coverage measures the share of seed terms present in the corpus, or falls
// back to a lexical-diversity proxy when no seeds exist.
func coverage(freq map[string]int, totalTokens int, seeds []string) float64 {
	if len(seeds) > 0 {
		matched := 0
		for _, seed := range seeds {
			if freq[strings.ToLower(strings.TrimSpace(seed))] > 0 {
				matched++
			}
		}
		return float64(matched) / float64(len(seeds))
	}
	if totalTokens == 0 {
		return 0
	}
	// Diversity proxy: a deep corpus uses many distinct substantive terms.
	diversity := float64(len(freq)) / float64(totalTokens)
	return clamp01(diversity * 4)
}

func topTerms(freq map[string]int, n int) []TermCount {
	terms := make([]TermCount, 0, len(freq))
	for term, count := range freq {
		terms = append(terms, TermCount{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func band(blend float64) int {
	switch {
	case blend >= 0.75:
		return 3
	case blend >= 0.50:
		return 2
	case blend >= 0.25:
		return 1
	default:
		return 0
	}
}
