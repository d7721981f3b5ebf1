package visibility

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/answerscope/answerscope/internal/utils"
)

// Component weights of the daily score. Citation volume dominates, URL
// diversity and recency make up the rest.
const (
	citationComponentMax  = 50.0
	diversityComponentMax = 30.0

	recencyToday     = 20
	recencyYesterday = 15
	recencyTwoDays   = 10
	recencyOlder     = 5

	// RankingLimit caps how many ranked domains are kept per
	// (week, assistant) partition.
	RankingLimit = 100

	dayLayout = "2006-01-02"
)

// Observation is one stored citation reduced to the fields the rollup needs.
type Observation struct {
	Assistant string
	Domain    string
	URL       string
}

// Score is one (day, assistant, domain) visibility row.
type Score struct {
	Day        string  `json:"day"`
	Assistant  string  `json:"assistant"`
	Domain     string  `json:"domain"`
	Score      int     `json:"score"`
	Citations  int     `json:"citations_count"`
	UniqueURLs int     `json:"unique_urls"`
	Recency    int     `json:"recency"`
	DriftPct   float64 `json:"drift_pct"`
}

// Ranking is one (weekStart, assistant, domain) weekly row.
type Ranking struct {
	WeekStart string  `json:"week_start"`
	Assistant string  `json:"assistant"`
	Domain    string  `json:"domain"`
	Rank      int     `json:"rank"`
	Mentions  int     `json:"mentions"`
	SharePct  float64 `json:"share_pct"`
	RankDelta int     `json:"rank_delta"`
}

// ScoreKey identifies a daily score row within one day.
type ScoreKey struct {
	Assistant string
	Domain    string
}

// Store is the slice of persistence the rollup engine needs.
type Store interface {
	CitationsOn(ctx context.Context, day string) ([]Observation, error)
	CitationsBetween(ctx context.Context, from, to string) ([]Observation, error)
	ScoresFor(ctx context.Context, day string) (map[ScoreKey]int, error)
	RanksFor(ctx context.Context, weekStart string) (map[ScoreKey]int, error)
	// SaveScores and SaveRankings replace all rows for the given key.
	SaveScores(ctx context.Context, day string, scores []Score) error
	SaveRankings(ctx context.Context, weekStart string, rankings []Ranking) error
}

// Locker serializes rollup batches. Overlapping runs for the same key would
// race the overwrite-by-key writes.
type Locker interface {
	Lock() error
	Unlock() error
}

// Engine runs the daily/weekly visibility rollup.
type Engine struct {
	store Store
	lock  Locker
	now   func() time.Time
}

// NewEngine builds a rollup engine. lock may be nil when the caller already
// serializes invocations.
func NewEngine(store Store, lock Locker) *Engine {
	return &Engine{store: store, lock: lock, now: time.Now}
}

// RollupDaily recomputes visibility scores for one day and the weekly
// rankings for the week containing it. Rerunning for the same day overwrites
// the prior rows. An unparseable day fails the whole batch before any write.
func (e *Engine) RollupDaily(ctx context.Context, day string) (scoresCreated, rankingsCreated int, err error) {
	date, err := time.Parse(dayLayout, day)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid rollup day %q: %w", day, err)
	}

	if e.lock != nil {
		if err := e.lock.Lock(); err != nil {
			return 0, 0, fmt.Errorf("acquiring rollup lock: %w", err)
		}
		defer e.lock.Unlock()
	}

	obs, err := e.store.CitationsOn(ctx, day)
	if err != nil {
		return 0, 0, fmt.Errorf("loading citations for %s: %w", day, err)
	}
	prevDay := date.AddDate(0, 0, -1).Format(dayLayout)
	prev, err := e.store.ScoresFor(ctx, prevDay)
	if err != nil {
		return 0, 0, fmt.Errorf("loading prior scores for %s: %w", prevDay, err)
	}

	scores := ComputeDailyScores(day, e.now().UTC(), obs, prev)
	if err := e.store.SaveScores(ctx, day, scores); err != nil {
		return 0, 0, fmt.Errorf("saving scores for %s: %w", day, err)
	}

	weekStart := WeekStart(date)
	weekEnd := weekStart.AddDate(0, 0, 6)
	weekObs, err := e.store.CitationsBetween(ctx, weekStart.Format(dayLayout), weekEnd.Format(dayLayout))
	if err != nil {
		return 0, 0, fmt.Errorf("loading citations for week of %s: %w", weekStart.Format(dayLayout), err)
	}
	priorWeek := weekStart.AddDate(0, 0, -7).Format(dayLayout)
	priorRanks, err := e.store.RanksFor(ctx, priorWeek)
	if err != nil {
		return 0, 0, fmt.Errorf("loading prior ranks for %s: %w", priorWeek, err)
	}

	rankings := ComputeWeeklyRankings(weekStart.Format(dayLayout), weekObs, priorRanks)
	if err := e.store.SaveRankings(ctx, weekStart.Format(dayLayout), rankings); err != nil {
		return 0, 0, fmt.Errorf("saving rankings for week of %s: %w", weekStart.Format(dayLayout), err)
	}

	utils.Log.Infof("Rollup for %s: %d scores, %d rankings", day, len(scores), len(rankings))
	return len(scores), len(rankings), nil
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// ComputeDailyScores aggregates one day's observations into per-domain
// scores. The citation component normalizes each domain's count against the
// assistant's per-domain mean for the day; diversity normalizes unique URLs
// against the assistant's daily maximum; recency rewards fresh days.
func ComputeDailyScores(day string, now time.Time, obs []Observation, prev map[ScoreKey]int) []Score {
	type agg struct {
		count int
		urls  map[string]bool
	}
	byAssistant := make(map[string]map[string]*agg)
	var assistants []string
	for _, o := range obs {
		domains := byAssistant[o.Assistant]
		if domains == nil {
			domains = make(map[string]*agg)
			byAssistant[o.Assistant] = domains
			assistants = append(assistants, o.Assistant)
		}
		a := domains[o.Domain]
		if a == nil {
			a = &agg{urls: make(map[string]bool)}
			domains[o.Domain] = a
		}
		a.count++
		a.urls[o.URL] = true
	}
	sort.Strings(assistants)

	recency := recencyBonus(day, now)
	var scores []Score
	for _, assistant := range assistants {
		domains := byAssistant[assistant]

		total := 0
		maxURLs := 0
		for _, a := range domains {
			total += a.count
			if len(a.urls) > maxURLs {
				maxURLs = len(a.urls)
			}
		}
		mean := float64(total) / float64(len(domains))

		names := make([]string, 0, len(domains))
		for d := range domains {
			names = append(names, d)
		}
		sort.Strings(names)

		for _, domain := range names {
			a := domains[domain]
			citation := math.Min(citationComponentMax, float64(a.count)/mean*citationComponentMax)
			diversity := 0.0
			if maxURLs > 0 {
				diversity = float64(len(a.urls)) / float64(maxURLs) * diversityComponentMax
			}
			value := int(math.Round(citation + diversity + float64(recency)))
			if value > 100 {
				value = 100
			}
			if value < 0 {
				value = 0
			}

			drift := 0.0
			if prevScore, ok := prev[ScoreKey{Assistant: assistant, Domain: domain}]; ok && prevScore > 0 {
				drift = (float64(value) - float64(prevScore)) / float64(prevScore) * 100
			}

			scores = append(scores, Score{
				Day:        day,
				Assistant:  assistant,
				Domain:     domain,
				Score:      value,
				Citations:  a.count,
				UniqueURLs: len(a.urls),
				Recency:    recency,
				DriftPct:   drift,
			})
		}
	}
	return scores
}

func recencyBonus(day string, now time.Time) int {
	date, err := time.Parse(dayLayout, day)
	if err != nil {
		return recencyOlder
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch offset := int(today.Sub(date).Hours() / 24); {
	case offset <= 0:
		return recencyToday
	case offset == 1:
		return recencyYesterday
	case offset == 2:
		return recencyTwoDays
	default:
		return recencyOlder
	}
}

// ComputeWeeklyRankings ranks domains by mention count within each
// (week, assistant) partition. Ranks are row numbers 1..N with ties kept in
// first-seen order, so reruns over the same stored citations are stable.
func ComputeWeeklyRankings(weekStart string, obs []Observation, prior map[ScoreKey]int) []Ranking {
	type tally struct {
		domain   string
		mentions int
	}
	byAssistant := make(map[string][]*tally)
	index := make(map[string]map[string]*tally)
	var assistants []string
	for _, o := range obs {
		if index[o.Assistant] == nil {
			index[o.Assistant] = make(map[string]*tally)
			assistants = append(assistants, o.Assistant)
		}
		t := index[o.Assistant][o.Domain]
		if t == nil {
			t = &tally{domain: o.Domain}
			index[o.Assistant][o.Domain] = t
			byAssistant[o.Assistant] = append(byAssistant[o.Assistant], t)
		}
		t.mentions++
	}
	sort.Strings(assistants)

	var rankings []Ranking
	for _, assistant := range assistants {
		tallies := byAssistant[assistant]
		sort.SliceStable(tallies, func(i, j int) bool { return tallies[i].mentions > tallies[j].mentions })

		total := 0
		for _, t := range tallies {
			total += t.mentions
		}
		if len(tallies) > RankingLimit {
			tallies = tallies[:RankingLimit]
		}
		for i, t := range tallies {
			rank := i + 1
			delta := 0
			if priorRank, ok := prior[ScoreKey{Assistant: assistant, Domain: t.domain}]; ok {
				delta = priorRank - rank
			}
			rankings = append(rankings, Ranking{
				WeekStart: weekStart,
				Assistant: assistant,
				Domain:    t.domain,
				Rank:      rank,
				Mentions:  t.mentions,
				SharePct:  float64(t.mentions) / float64(total) * 100,
				RankDelta: delta,
			})
		}
	}
	return rankings
}
