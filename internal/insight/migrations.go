package insight

import (
	"database/sql"

	"github.com/corvid-labs/airsight/pkg/plugin"
)

// migrations returns the Insight module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create insight cards table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS insight_cards (
						id             TEXT PRIMARY KEY,
						category       TEXT NOT NULL,
						title          TEXT NOT NULL,
						explanation    TEXT NOT NULL DEFAULT '',
						evidence       TEXT NOT NULL DEFAULT '[]',
						recommendation TEXT NOT NULL DEFAULT '',
						card_group     TEXT NOT NULL,
						severity       TEXT NOT NULL DEFAULT 'info',
						scope          TEXT NOT NULL DEFAULT 'network',
						impact         REAL NOT NULL DEFAULT 0,
						confidence     REAL NOT NULL DEFAULT 0,
						recurrence     REAL NOT NULL DEFAULT 0,
						trend          TEXT,
						prediction     TEXT,
						rank_score     REAL NOT NULL DEFAULT 0,
						created_at     DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_insight_cards_created ON insight_cards(created_at)`,
					`CREATE INDEX IF NOT EXISTS idx_insight_cards_severity ON insight_cards(severity)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
