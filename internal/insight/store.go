package insight

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// InsightStore persists generated cards for retrieval between evaluation
// cycles and across restarts.
type InsightStore struct {
	db *sql.DB
}

// NewInsightStore creates a store backed by the shared database.
func NewInsightStore(db *sql.DB) *InsightStore {
	return &InsightStore{db: db}
}

// SaveCards inserts one evaluation cycle's ranked card list. All cards in
// a cycle share a created_at, which is how LatestCards finds the newest
// generation.
func (s *InsightStore) SaveCards(ctx context.Context, cards []telemetry.InsightCard) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save cards: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO insight_cards
		(id, category, title, explanation, evidence, recommendation,
		 card_group, severity, scope, impact, confidence, recurrence,
		 trend, prediction, rank_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert card: %w", err)
	}
	defer stmt.Close()

	for i := range cards {
		c := &cards[i]
		evidence, err := json.Marshal(c.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence: %w", err)
		}
		trend, err := marshalNullable(c.Trend)
		if err != nil {
			return fmt.Errorf("marshal trend: %w", err)
		}
		prediction, err := marshalNullable(c.Prediction)
		if err != nil {
			return fmt.Errorf("marshal prediction: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Category, c.Title, c.Explanation, string(evidence),
			c.Recommendation, c.Group, c.Severity, c.Scope,
			c.Impact, c.Confidence, c.Recurrence,
			trend, prediction, c.RankScore, c.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert card %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// LatestCards returns the newest evaluation cycle's cards, rank order
// preserved. Returns an empty slice when no evaluation has run yet.
func (s *InsightStore) LatestCards(ctx context.Context) ([]telemetry.InsightCard, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, category, title, explanation, evidence, recommendation,
		card_group, severity, scope, impact, confidence, recurrence,
		trend, prediction, rank_score, created_at
		FROM insight_cards
		WHERE created_at = (SELECT MAX(created_at) FROM insight_cards)
		ORDER BY rank_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("query latest cards: %w", err)
	}
	defer rows.Close()

	var cards []telemetry.InsightCard
	for rows.Next() {
		var c telemetry.InsightCard
		var evidence string
		var trend, prediction sql.NullString
		var createdAt time.Time
		if err := rows.Scan(
			&c.ID, &c.Category, &c.Title, &c.Explanation, &evidence,
			&c.Recommendation, &c.Group, &c.Severity, &c.Scope,
			&c.Impact, &c.Confidence, &c.Recurrence,
			&trend, &prediction, &c.RankScore, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		if err := json.Unmarshal([]byte(evidence), &c.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence for %s: %w", c.ID, err)
		}
		if trend.Valid {
			if err := json.Unmarshal([]byte(trend.String), &c.Trend); err != nil {
				return nil, fmt.Errorf("unmarshal trend for %s: %w", c.ID, err)
			}
		}
		if prediction.Valid {
			if err := json.Unmarshal([]byte(prediction.String), &c.Prediction); err != nil {
				return nil, fmt.Errorf("unmarshal prediction for %s: %w", c.ID, err)
			}
		}
		c.CreatedAt = createdAt
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// DeleteOldCards removes cards created before the cutoff and returns
// the number deleted.
func (s *InsightStore) DeleteOldCards(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM insight_cards WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old cards: %w", err)
	}
	return res.RowsAffected()
}

func marshalNullable(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *telemetry.TrendInfo:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *telemetry.PredictionInfo:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
