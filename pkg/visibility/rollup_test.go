package visibility

import (
	"context"
	"reflect"
	"testing"
	"time"
)

type memStore struct {
	citations map[string][]Observation
	scores    map[string][]Score
	rankings  map[string][]Ranking
	saves     int
}

func newMemStore() *memStore {
	return &memStore{
		citations: make(map[string][]Observation),
		scores:    make(map[string][]Score),
		rankings:  make(map[string][]Ranking),
	}
}

func (m *memStore) CitationsOn(_ context.Context, day string) ([]Observation, error) {
	return m.citations[day], nil
}

func (m *memStore) CitationsBetween(_ context.Context, from, to string) ([]Observation, error) {
	var out []Observation
	for day, obs := range m.citations {
		if day >= from && day <= to {
			out = append(out, obs...)
		}
	}
	return out, nil
}

func (m *memStore) ScoresFor(_ context.Context, day string) (map[ScoreKey]int, error) {
	out := make(map[ScoreKey]int)
	for _, s := range m.scores[day] {
		out[ScoreKey{Assistant: s.Assistant, Domain: s.Domain}] = s.Score
	}
	return out, nil
}

func (m *memStore) RanksFor(_ context.Context, weekStart string) (map[ScoreKey]int, error) {
	out := make(map[ScoreKey]int)
	for _, r := range m.rankings[weekStart] {
		out[ScoreKey{Assistant: r.Assistant, Domain: r.Domain}] = r.Rank
	}
	return out, nil
}

func (m *memStore) SaveScores(_ context.Context, day string, scores []Score) error {
	m.saves++
	m.scores[day] = scores
	return nil
}

func (m *memStore) SaveRankings(_ context.Context, weekStart string, rankings []Ranking) error {
	m.rankings[weekStart] = rankings
	return nil
}

func testEngine(store Store) *Engine {
	e := NewEngine(store, nil)
	e.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func obs(assistant, domain, url string) Observation {
	return Observation{Assistant: assistant, Domain: domain, URL: url}
}

func TestRollupDailyIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.citations["2024-06-01"] = []Observation{
		obs("perplexity", "example.com", "https://example.com/a"),
		obs("perplexity", "example.com", "https://example.com/b"),
		obs("perplexity", "rival.net", "https://rival.net/x"),
	}
	e := testEngine(store)

	scores1, ranks1, err := e.RollupDaily(context.Background(), "2024-06-01")
	if err != nil {
		t.Fatalf("first rollup: %v", err)
	}
	first := append([]Score(nil), store.scores["2024-06-01"]...)

	scores2, ranks2, err := e.RollupDaily(context.Background(), "2024-06-01")
	if err != nil {
		t.Fatalf("second rollup: %v", err)
	}
	if scores1 != scores2 || ranks1 != ranks2 {
		t.Errorf("rerun changed counts: (%d,%d) vs (%d,%d)", scores1, ranks1, scores2, ranks2)
	}
	if len(store.scores["2024-06-01"]) != 2 {
		t.Errorf("expected 2 score rows after rerun, got %d", len(store.scores["2024-06-01"]))
	}
	if !reflect.DeepEqual(first, store.scores["2024-06-01"]) {
		t.Errorf("rerun produced different rows:\n%#v\n%#v", first, store.scores["2024-06-01"])
	}
}

func TestRollupDailyRejectsInvalidDay(t *testing.T) {
	store := newMemStore()
	e := testEngine(store)
	if _, _, err := e.RollupDaily(context.Background(), "June 1st"); err == nil {
		t.Fatal("expected error for invalid day")
	}
	if store.saves != 0 {
		t.Errorf("invalid day must not write anything, got %d saves", store.saves)
	}
}

func TestComputeDailyScoresComponents(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	observations := []Observation{
		obs("perplexity", "example.com", "https://example.com/a"),
		obs("perplexity", "example.com", "https://example.com/b"),
		obs("perplexity", "example.com", "https://example.com/c"),
		obs("perplexity", "rival.net", "https://rival.net/x"),
	}
	scores := ComputeDailyScores("2024-06-01", now, observations, nil)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}

	// example.com: count 3 vs mean 2 caps the citation component at 50,
	// 3 unique URLs is the day max so diversity is 30, plus today bonus 20.
	top := scores[0]
	if top.Domain != "example.com" {
		t.Fatalf("unexpected order: %s first", top.Domain)
	}
	if top.Score != 100 {
		t.Errorf("example.com score = %d, want 100", top.Score)
	}
	if top.Recency != recencyToday {
		t.Errorf("recency = %d, want %d", top.Recency, recencyToday)
	}

	// rival.net: 1/2*50 + 1/3*30 + 20 = 55.
	if scores[1].Score != 55 {
		t.Errorf("rival.net score = %d, want 55", scores[1].Score)
	}
}

func TestComputeDailyScoresDrift(t *testing.T) {
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	prev := map[ScoreKey]int{{Assistant: "perplexity", Domain: "example.com"}: 80}
	scores := ComputeDailyScores("2024-06-02", now, []Observation{
		obs("perplexity", "example.com", "https://example.com/a"),
	}, prev)
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	// Sole domain: 50 + 30 + 20 = 100, drift (100-80)/80 = +25%.
	if scores[0].DriftPct != 25 {
		t.Errorf("drift = %v, want 25", scores[0].DriftPct)
	}
}

func TestRecencyBonusTiers(t *testing.T) {
	now := time.Date(2024, 6, 10, 6, 0, 0, 0, time.UTC)
	cases := map[string]int{
		"2024-06-10": recencyToday,
		"2024-06-09": recencyYesterday,
		"2024-06-08": recencyTwoDays,
		"2024-06-01": recencyOlder,
	}
	for day, want := range cases {
		if got := recencyBonus(day, now); got != want {
			t.Errorf("recencyBonus(%s) = %d, want %d", day, got, want)
		}
	}
}

func TestWeeklyRankingsOrderAndTieBreak(t *testing.T) {
	observations := []Observation{
		obs("perplexity", "first.com", "https://first.com/a"),
		obs("perplexity", "second.com", "https://second.com/a"),
		obs("perplexity", "big.com", "https://big.com/a"),
		obs("perplexity", "big.com", "https://big.com/b"),
		obs("perplexity", "big.com", "https://big.com/c"),
	}
	rankings := ComputeWeeklyRankings("2024-05-27", observations, nil)
	if len(rankings) != 3 {
		t.Fatalf("expected 3 rankings, got %d", len(rankings))
	}
	wantOrder := []string{"big.com", "first.com", "second.com"}
	for i, want := range wantOrder {
		if rankings[i].Domain != want {
			t.Errorf("rank %d = %s, want %s", i+1, rankings[i].Domain, want)
		}
		if rankings[i].Rank != i+1 {
			t.Errorf("rank value = %d, want %d", rankings[i].Rank, i+1)
		}
	}
	if rankings[0].SharePct != 60 {
		t.Errorf("big.com share = %v, want 60", rankings[0].SharePct)
	}
}

func TestWeeklyRankingsDelta(t *testing.T) {
	prior := map[ScoreKey]int{
		{Assistant: "perplexity", Domain: "riser.com"}:  5,
		{Assistant: "perplexity", Domain: "faller.com"}: 1,
	}
	observations := []Observation{
		obs("perplexity", "riser.com", "https://riser.com/a"),
		obs("perplexity", "riser.com", "https://riser.com/b"),
		obs("perplexity", "faller.com", "https://faller.com/a"),
	}
	rankings := ComputeWeeklyRankings("2024-06-03", observations, prior)
	if rankings[0].Domain != "riser.com" || rankings[0].RankDelta != 4 {
		t.Errorf("riser delta = %+d, want +4", rankings[0].RankDelta)
	}
	if rankings[1].Domain != "faller.com" || rankings[1].RankDelta != -1 {
		t.Errorf("faller delta = %+d, want -1", rankings[1].RankDelta)
	}
}

func TestWeeklyRankingsLimit(t *testing.T) {
	var observations []Observation
	for i := 0; i < RankingLimit+20; i++ {
		d := "d" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + ".com"
		observations = append(observations, obs("perplexity", d, "https://"+d+"/"))
	}
	rankings := ComputeWeeklyRankings("2024-06-03", observations, nil)
	if len(rankings) != RankingLimit {
		t.Errorf("expected %d rankings, got %d", RankingLimit, len(rankings))
	}
}
