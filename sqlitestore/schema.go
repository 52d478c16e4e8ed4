package sqlitestore

import (
	"context"
	"database/sql"
)

// schema creates the tables of the store. Amounts and quantities are kept as
// decimal strings so that nothing is lost to floating point.
const schema = `
CREATE TABLE IF NOT EXISTS investors (
    id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS operations (
    investor TEXT NOT NULL REFERENCES investors(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    id TEXT NOT NULL,
    date TEXT NOT NULL,
    ticker TEXT NOT NULL,
    side TEXT NOT NULL,
    quantity TEXT NOT NULL,
    price TEXT NOT NULL,
    fees TEXT NOT NULL,
    PRIMARY KEY (investor, id)
);

CREATE INDEX IF NOT EXISTS idx_operations_order ON operations(investor, date, seq);

CREATE TABLE IF NOT EXISTS darf_payments (
    investor TEXT NOT NULL REFERENCES investors(id) ON DELETE CASCADE,
    competence TEXT NOT NULL,
    category TEXT NOT NULL,
    seq INTEGER NOT NULL,
    amount TEXT NOT NULL,
    paid_on TEXT NOT NULL,
    PRIMARY KEY (investor, competence, category, seq)
);
`

// InitSchema ensures the tables exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
