package visibility

import "testing"

func TestAdjustBonusNeverExceedsCap(t *testing.T) {
	a := Adjust(50, CitationRates{Perplexity: 1, ChatGPT: 1, Gemini: 1})
	if a.Bonus != bonusCap {
		t.Errorf("bonus = %d, want %d", a.Bonus, bonusCap)
	}
	if a.Adjusted != 60 {
		t.Errorf("adjusted = %d, want 60", a.Adjusted)
	}
}

func TestAdjustNeverExceedsHundred(t *testing.T) {
	a := Adjust(97, CitationRates{Perplexity: 1, ChatGPT: 1})
	if a.Adjusted != 100 {
		t.Errorf("adjusted = %d, want 100", a.Adjusted)
	}
}

func TestAdjustThresholds(t *testing.T) {
	a := Adjust(40, CitationRates{Perplexity: 0.49, ChatGPT: 0.49, Gemini: 0.59})
	if a.Bonus != 0 {
		t.Errorf("below-threshold rates earned bonus %d", a.Bonus)
	}
	if a.Adjusted != 40 {
		t.Errorf("adjusted = %d, want 40", a.Adjusted)
	}

	b := Adjust(40, CitationRates{Perplexity: 0.5})
	if b.Bonus < 1 {
		t.Errorf("qualifying rate earned no bonus")
	}
}

func TestAdjustGeminiCapsAtThree(t *testing.T) {
	a := Adjust(40, CitationRates{Gemini: 1})
	if a.Bonus != 3 {
		t.Errorf("gemini bonus = %d, want 3", a.Bonus)
	}
}

func TestAdjustFlags(t *testing.T) {
	if f := Adjust(40, CitationRates{Perplexity: 1, ChatGPT: 1}).Flag; f != FlagCitationOverperformance {
		t.Errorf("flag = %s, want %s", f, FlagCitationOverperformance)
	}
	if f := Adjust(85, CitationRates{}).Flag; f != FlagStructuralAdvantage {
		t.Errorf("flag = %s, want %s", f, FlagStructuralAdvantage)
	}
	if f := Adjust(60, CitationRates{Perplexity: 0.55}).Flag; f != FlagBalanced {
		t.Errorf("flag = %s, want %s", f, FlagBalanced)
	}
}
