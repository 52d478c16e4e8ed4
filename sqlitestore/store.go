// Package sqlitestore persists investor ledgers in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is a carteira.Store backed by SQLite.
type Store struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

var _ carteira.Store = (*Store)(nil)

// Open opens, and creates when needed, the database at dbPath.
func Open(ctx context.Context, dbPath string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		conn: conn,
		path: dbPath,
		log:  log.With().Str("component", "sqlitestore").Logger(),
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Load reads the ledger of the investor. An unknown investor has an empty
// ledger.
func (s *Store) Load(ctx context.Context, investor string) (*carteira.Ledger, error) {
	ops, err := s.operations(ctx, investor)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments(ctx, investor)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("investor", investor).Int("operations", len(ops)).Msg("ledger loaded")
	return carteira.RestoreLedger(ops, payments), nil
}

func (s *Store) operations(ctx context.Context, investor string) ([]carteira.Operation, error) {
	query := `
		SELECT seq, id, date, ticker, side, quantity, price, fees
		FROM operations
		WHERE investor = ?
		ORDER BY date, seq
	`
	rows, err := s.conn.QueryContext(ctx, query, investor)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []carteira.Operation
	for rows.Next() {
		var op carteira.Operation
		var id, on, side, quantity, price, fee string
		if err := rows.Scan(&op.Seq, &id, &on, &op.Ticker, &side, &quantity, &price, &fee); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.ID = carteira.OperationID(id)
		if op.Date, err = date.Parse(on); err != nil {
			return nil, fmt.Errorf("operation %s: %w", id, err)
		}
		if op.Side, err = carteira.ParseSide(side); err != nil {
			return nil, fmt.Errorf("operation %s: %w", id, err)
		}
		q, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("operation %s: invalid quantity: %w", id, err)
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("operation %s: invalid price: %w", id, err)
		}
		f, err := decimal.NewFromString(fee)
		if err != nil {
			return nil, fmt.Errorf("operation %s: invalid fees: %w", id, err)
		}
		op.Quantity, op.UnitPrice, op.Fees = carteira.Q(q), carteira.M(p), carteira.M(f)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (s *Store) payments(ctx context.Context, investor string) ([]carteira.DarfPayment, error) {
	query := `
		SELECT competence, category, amount, paid_on
		FROM darf_payments
		WHERE investor = ?
		ORDER BY competence, category, seq
	`
	rows, err := s.conn.QueryContext(ctx, query, investor)
	if err != nil {
		return nil, fmt.Errorf("failed to query DARF payments: %w", err)
	}
	defer rows.Close()

	var payments []carteira.DarfPayment
	for rows.Next() {
		var competence, category, amount, paidOn string
		if err := rows.Scan(&competence, &category, &amount, &paidOn); err != nil {
			return nil, fmt.Errorf("failed to scan DARF payment: %w", err)
		}
		var p carteira.DarfPayment
		if p.Competence, err = date.ParseMonth(competence); err != nil {
			return nil, err
		}
		if p.Category, err = carteira.ParseDarfCategory(category); err != nil {
			return nil, err
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount of DARF payment %s/%s: %w", competence, category, err)
		}
		p.Amount = carteira.M(a)
		if p.PaidOn, err = date.Parse(paidOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Save replaces the ledger of the investor in a single transaction.
func (s *Store) Save(ctx context.Context, investor string, ledger *carteira.Ledger) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO investors (id) VALUES (?)`, investor); err != nil {
		return fmt.Errorf("failed to insert investor: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE investor = ?`, investor); err != nil {
		return fmt.Errorf("failed to delete operations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM darf_payments WHERE investor = ?`, investor); err != nil {
		return fmt.Errorf("failed to delete DARF payments: %w", err)
	}

	insertOp, err := tx.PrepareContext(ctx, `
		INSERT INTO operations (investor, seq, id, date, ticker, side, quantity, price, fees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertOp.Close()
	for _, op := range ledger.Operations() {
		_, err := insertOp.ExecContext(ctx,
			investor,
			op.Seq,
			string(op.ID),
			op.Date.String(),
			op.Ticker,
			string(op.Side),
			op.Quantity.String(),
			op.UnitPrice.Decimal().String(),
			op.Fees.Decimal().String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert operation %s: %w", op.ID, err)
		}
	}

	for i, p := range ledger.Payments() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO darf_payments (investor, competence, category, seq, amount, paid_on) VALUES (?, ?, ?, ?, ?, ?)`,
			investor, p.Competence.String(), string(p.Category), i, p.Amount.Decimal().String(), p.PaidOn.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert DARF payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	s.log.Debug().Str("investor", investor).Int("operations", ledger.Len()).Msg("ledger saved")
	return nil
}

// Investors lists the investors with a saved ledger.
func (s *Store) Investors(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM investors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query investors: %w", err)
	}
	defer rows.Close()

	investors := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan investor: %w", err)
		}
		investors = append(investors, id)
	}
	return investors, rows.Err()
}
