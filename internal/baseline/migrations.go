package baseline

import (
	"database/sql"

	"github.com/corvid-labs/airsight/pkg/plugin"
)

// migrations returns the Baseline module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create baseline state table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS baseline_state (
					key        TEXT PRIMARY KEY,
					data       BLOB NOT NULL,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
				return err
			},
		},
	}
}
