package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/answerscope/answerscope/pkg/providers"
	"github.com/answerscope/answerscope/pkg/scoring"
	"github.com/answerscope/answerscope/pkg/signals"
	"github.com/answerscope/answerscope/pkg/visibility"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS audits (
  id              INTEGER PRIMARY KEY,
  domain          TEXT NOT NULL,
  catalog_version TEXT NOT NULL,
  overall         INTEGER NOT NULL,
  result          TEXT NOT NULL,
  created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audits_domain ON audits(domain, created_at);
CREATE TABLE IF NOT EXISTS page_signals (
  audit_id INTEGER NOT NULL REFERENCES audits(id),
  url      TEXT NOT NULL,
  signals  TEXT NOT NULL,
  UNIQUE(audit_id, url)
);
CREATE TABLE IF NOT EXISTS check_results (
  audit_id     INTEGER NOT NULL REFERENCES audits(id),
  criterion_id TEXT NOT NULL,
  url          TEXT NOT NULL DEFAULT '',
  score        INTEGER NOT NULL,
  status       TEXT NOT NULL,
  evidence     TEXT
);
CREATE INDEX IF NOT EXISTS idx_check_results_audit ON check_results(audit_id);
CREATE TABLE IF NOT EXISTS citations (
  id         INTEGER PRIMARY KEY,
  assistant  TEXT NOT NULL,
  query      TEXT NOT NULL,
  url        TEXT NOT NULL,
  domain     TEXT NOT NULL,
  title      TEXT,
  snippet    TEXT,
  day        TEXT NOT NULL,
  fetched_at DATETIME NOT NULL,
  UNIQUE(assistant, query, url, day)
);
CREATE INDEX IF NOT EXISTS idx_citations_day ON citations(day, assistant);
CREATE INDEX IF NOT EXISTS idx_citations_domain ON citations(domain, day);
CREATE TABLE IF NOT EXISTS visibility_scores (
  day             TEXT NOT NULL,
  assistant       TEXT NOT NULL,
  domain          TEXT NOT NULL,
  score           INTEGER NOT NULL,
  citations_count INTEGER NOT NULL,
  unique_urls     INTEGER NOT NULL,
  recency         INTEGER NOT NULL,
  drift_pct       REAL NOT NULL,
  UNIQUE(day, assistant, domain)
);
CREATE TABLE IF NOT EXISTS rankings (
  week_start TEXT NOT NULL,
  assistant  TEXT NOT NULL,
  domain     TEXT NOT NULL,
  rank       INTEGER NOT NULL,
  mentions   INTEGER NOT NULL,
  share_pct  REAL NOT NULL,
  rank_delta INTEGER NOT NULL,
  UNIQUE(week_start, assistant, domain)
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveAudit persists one audit run: the audit row with its full result JSON,
// the extracted signals per page (upsert by audit+url) and the flat check
// result rows. Everything commits or nothing does.
func (d *DB) SaveAudit(ctx context.Context, domain, catalogVersion string, pages []*signals.PageSignals, result *scoring.Result) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, err
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO audits(domain, catalog_version, overall, result) VALUES(?,?,?,?)`,
		domain, catalogVersion, result.Overall, string(resultJSON))
	if err != nil {
		return 0, err
	}
	auditID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range pages {
		var blob []byte
		blob, err = json.Marshal(p)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO page_signals(audit_id, url, signals) VALUES(?,?,?)
ON CONFLICT(audit_id, url) DO UPDATE SET signals = excluded.signals`, auditID, p.URL, string(blob))
		if err != nil {
			return 0, err
		}
	}

	for _, c := range result.CheckResults {
		_, err = tx.ExecContext(ctx, `INSERT INTO check_results(audit_id, criterion_id, url, score, status, evidence) VALUES(?,?,?,?,?,?)`,
			auditID, c.CriterionID, c.URL, c.Score, c.Status, nullIfEmpty(c.Evidence))
		if err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return auditID, nil
}

// AuditResult loads the stored result JSON for one audit.
func (d *DB) AuditResult(ctx context.Context, auditID int64) (domain string, result *scoring.Result, err error) {
	var blob string
	err = d.sql.QueryRowContext(ctx, `SELECT domain, result FROM audits WHERE id = ?`, auditID).Scan(&domain, &blob)
	if err != nil {
		return "", nil, err
	}
	result = &scoring.Result{}
	if err = json.Unmarshal([]byte(blob), result); err != nil {
		return "", nil, fmt.Errorf("decoding stored result for audit %d: %w", auditID, err)
	}
	return domain, result, nil
}

// InsertCitations appends citations, deduplicating on
// (assistant, query, url, day). Returns how many rows were actually new.
func (d *DB) InsertCitations(ctx context.Context, citations []providers.Citation) (int, error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inserted := 0
	for _, c := range citations {
		fetched := c.FetchedAt
		if fetched.IsZero() {
			fetched = time.Now().UTC()
		}
		var res sql.Result
		res, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO citations(assistant, query, url, domain, title, snippet, day, fetched_at) VALUES(?,?,?,?,?,?,?,?)`,
			c.Provider, c.Query, c.URL, c.Domain, nullIfEmpty(c.Title), nullIfEmpty(c.Snippet), fetched.UTC().Format("2006-01-02"), fetched.UTC())
		if err != nil {
			return 0, err
		}
		n, aerr := res.RowsAffected()
		if aerr == nil {
			inserted += int(n)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// CitationsOn implements visibility.Store.
func (d *DB) CitationsOn(ctx context.Context, day string) ([]visibility.Observation, error) {
	return d.queryObservations(ctx, `SELECT assistant, domain, url FROM citations WHERE day = ?`, day)
}

// CitationsBetween implements visibility.Store. Both bounds are inclusive.
func (d *DB) CitationsBetween(ctx context.Context, from, to string) ([]visibility.Observation, error) {
	return d.queryObservations(ctx, `SELECT assistant, domain, url FROM citations WHERE day >= ? AND day <= ? ORDER BY id`, from, to)
}

func (d *DB) queryObservations(ctx context.Context, query string, args ...interface{}) ([]visibility.Observation, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []visibility.Observation
	for rows.Next() {
		var o visibility.Observation
		if err := rows.Scan(&o.Assistant, &o.Domain, &o.URL); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScoresFor implements visibility.Store.
func (d *DB) ScoresFor(ctx context.Context, day string) (map[visibility.ScoreKey]int, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT assistant, domain, score FROM visibility_scores WHERE day = ?`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[visibility.ScoreKey]int)
	for rows.Next() {
		var k visibility.ScoreKey
		var score int
		if err := rows.Scan(&k.Assistant, &k.Domain, &score); err != nil {
			return nil, err
		}
		out[k] = score
	}
	return out, rows.Err()
}

// RanksFor implements visibility.Store.
func (d *DB) RanksFor(ctx context.Context, weekStart string) (map[visibility.ScoreKey]int, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT assistant, domain, rank FROM rankings WHERE week_start = ?`, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[visibility.ScoreKey]int)
	for rows.Next() {
		var k visibility.ScoreKey
		var rank int
		if err := rows.Scan(&k.Assistant, &k.Domain, &rank); err != nil {
			return nil, err
		}
		out[k] = rank
	}
	return out, rows.Err()
}

// SaveScores implements visibility.Store: replaces all rows for the day.
func (d *DB) SaveScores(ctx context.Context, day string, scores []visibility.Score) error {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM visibility_scores WHERE day = ?`, day); err != nil {
		return err
	}
	for _, s := range scores {
		_, err = tx.ExecContext(ctx, `INSERT INTO visibility_scores(day, assistant, domain, score, citations_count, unique_urls, recency, drift_pct) VALUES(?,?,?,?,?,?,?,?)`,
			s.Day, s.Assistant, s.Domain, s.Score, s.Citations, s.UniqueURLs, s.Recency, s.DriftPct)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveRankings implements visibility.Store: replaces all rows for the week.
func (d *DB) SaveRankings(ctx context.Context, weekStart string, rankings []visibility.Ranking) error {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM rankings WHERE week_start = ?`, weekStart); err != nil {
		return err
	}
	for _, r := range rankings {
		_, err = tx.ExecContext(ctx, `INSERT INTO rankings(week_start, assistant, domain, rank, mentions, share_pct, rank_delta) VALUES(?,?,?,?,?,?,?)`,
			r.WeekStart, r.Assistant, r.Domain, r.Rank, r.Mentions, r.SharePct, r.RankDelta)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// VisibilityScores lists stored daily scores, newest day first, optionally
// filtered by domain and assistant.
func (d *DB) VisibilityScores(ctx context.Context, domain, assistant string, limit int) ([]visibility.Score, error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []interface{}{}
	if domain != "" {
		where += " AND domain = ?"
		args = append(args, domain)
	}
	if assistant != "" {
		where += " AND assistant = ?"
		args = append(args, assistant)
	}
	args = append(args, limit)

	q := "SELECT day, assistant, domain, score, citations_count, unique_urls, recency, drift_pct FROM visibility_scores " + where + " ORDER BY day DESC, assistant, domain LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []visibility.Score
	for rows.Next() {
		var s visibility.Score
		if err := rows.Scan(&s.Day, &s.Assistant, &s.Domain, &s.Score, &s.Citations, &s.UniqueURLs, &s.Recency, &s.DriftPct); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Rankings lists one week's rankings in rank order, optionally filtered by
// assistant.
func (d *DB) Rankings(ctx context.Context, weekStart, assistant string) ([]visibility.Ranking, error) {
	where := "WHERE week_start = ?"
	args := []interface{}{weekStart}
	if assistant != "" {
		where += " AND assistant = ?"
		args = append(args, assistant)
	}
	q := "SELECT week_start, assistant, domain, rank, mentions, share_pct, rank_delta FROM rankings " + where + " ORDER BY assistant, rank"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []visibility.Ranking
	for rows.Next() {
		var r visibility.Ranking
		if err := rows.Scan(&r.WeekStart, &r.Assistant, &r.Domain, &r.Rank, &r.Mentions, &r.SharePct, &r.RankDelta); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AssistantStats summarizes stored citations per assistant.
type AssistantStats struct {
	Assistant     string `json:"assistant"`
	CitationCount int    `json:"citation_count"`
	DomainCount   int    `json:"domain_count"`
}

func (d *DB) GetStats(ctx context.Context) ([]AssistantStats, error) {
	query := `
		SELECT
			assistant,
			COUNT(*),
			COUNT(DISTINCT domain)
		FROM
			citations
		GROUP BY
			assistant
		ORDER BY
			assistant;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []AssistantStats
	for rows.Next() {
		var s AssistantStats
		if err := rows.Scan(&s.Assistant, &s.CitationCount, &s.DomainCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
