package visibility

// Adjustment flags describe the gap between structural score and proven
// citation performance, for explanatory UI text only.
const (
	FlagCitationOverperformance = "citation_overperformance"
	FlagStructuralAdvantage     = "structural_advantage"
	FlagBalanced                = "balanced"
)

const (
	bonusCap = 10

	perplexityThreshold = 0.5
	perplexityBonusMax  = 5.0
	chatgptThreshold    = 0.5
	chatgptBonusMax     = 5.0
	geminiThreshold     = 0.6
	geminiBonusMax      = 3.0
)

// CitationRates holds the observed share of answers citing the domain, per
// assistant, each in [0,1].
type CitationRates struct {
	Perplexity float64 `json:"perplexity"`
	ChatGPT    float64 `json:"chatgpt"`
	Gemini     float64 `json:"gemini"`
}

// Adjustment is the result of blending structural score with citation rates.
type Adjustment struct {
	Structural int    `json:"structural"`
	Bonus      int    `json:"bonus"`
	Adjusted   int    `json:"adjusted"`
	Flag       string `json:"flag"`
}

// Adjust blends a structural audit score with proven citation performance.
// Each qualifying assistant contributes a bonus proportional to how far its
// rate sits above the threshold; the total bonus never exceeds 10 and the
// adjusted score never exceeds 100.
func Adjust(structural int, rates CitationRates) Adjustment {
	bonus := rateBonus(rates.Perplexity, perplexityThreshold, perplexityBonusMax) +
		rateBonus(rates.ChatGPT, chatgptThreshold, chatgptBonusMax) +
		rateBonus(rates.Gemini, geminiThreshold, geminiBonusMax)
	if bonus > bonusCap {
		bonus = bonusCap
	}

	adjusted := structural + bonus
	if adjusted > 100 {
		adjusted = 100
	}

	flag := FlagBalanced
	switch {
	case bonus >= 5 && structural < 70:
		flag = FlagCitationOverperformance
	case bonus == 0 && structural >= 70:
		flag = FlagStructuralAdvantage
	}

	return Adjustment{Structural: structural, Bonus: bonus, Adjusted: adjusted, Flag: flag}
}

// rateBonus scales the rate's headroom above the threshold into [0,max].
func rateBonus(rate, threshold, max float64) int {
	if rate < threshold {
		return 0
	}
	span := 1 - threshold
	if span <= 0 {
		return int(max)
	}
	scaled := (rate - threshold) / span * max
	if scaled > max {
		scaled = max
	}
	// A qualifying rate always earns at least one point.
	if scaled < 1 {
		return 1
	}
	return int(scaled + 0.5)
}
