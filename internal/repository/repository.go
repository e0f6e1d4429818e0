package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/advance-service/internal/models"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Repository provides database operations
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

// Open connects to the database, verifies the connection and creates missing tables
func Open(ctx context.Context, dialect Dialect, dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is required")
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if dialect == SQLite {
		// a single connection keeps SQLite writers from tripping over each other
		db.SetMaxOpenConns(1)
	}

	r := NewRepository(db, dialect)
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if r.dialect == SQLite {
		if _, err := r.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return storeErr("enable foreign keys", err)
		}
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.schema()); err != nil {
		return storeErr("migrate schema", err)
	}
	return nil
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}

// rebind rewrites ? placeholders into $n for PostgreSQL
func (r *Repository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("create account", err)
	}
	defer tx.Rollback() // nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, r.rebind(`SELECT 1 FROM accounts WHERE id = ?`), account.ID).Scan(&exists)
	if err == nil {
		return fmt.Errorf("account %d: %w", account.ID, ErrAccountExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return storeErr("create account", err)
	}

	if _, err := tx.ExecContext(ctx, r.rebind(`INSERT INTO accounts (id, balance) VALUES (?, ?)`),
		account.ID, account.Balance); err != nil {
		return storeErr("create account", err)
	}
	if err := r.saveLoan(ctx, tx, account); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("create account", err)
	}
	return nil
}

// GetAccount retrieves an account and its loan schedule by id
func (r *Repository) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT id, balance FROM accounts WHERE id = ?`), id).
		Scan(&account.ID, &account.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	if err != nil {
		return nil, storeErr("get account", err)
	}

	account.Loan, err = r.loadLoan(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount writes the balance and replaces the stored loan schedule
func (r *Repository) UpdateAccount(ctx context.Context, account *models.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("update account", err)
	}
	defer tx.Rollback() // nolint:errcheck

	query := `
		INSERT INTO accounts (id, balance) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET balance = excluded.balance`
	if _, err := tx.ExecContext(ctx, r.rebind(query), account.ID, account.Balance); err != nil {
		return storeErr("update account", err)
	}
	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM loan_installments WHERE account_id = ?`), account.ID); err != nil {
		return storeErr("update account", err)
	}
	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM loans WHERE account_id = ?`), account.ID); err != nil {
		return storeErr("update account", err)
	}
	if err := r.saveLoan(ctx, tx, account); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("update account", err)
	}
	return nil
}

// ListAccounts retrieves every account with its loan schedule
func (r *Repository) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, balance FROM accounts ORDER BY id`)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(&account.ID, &account.Balance); err != nil {
			rows.Close()
			return nil, storeErr("list accounts", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeErr("list accounts", err)
	}
	rows.Close()

	for _, account := range accounts {
		if account.Loan, err = r.loadLoan(ctx, r.db, account.ID); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// DeleteAccount removes an account and its loan
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("delete account", err)
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM loan_installments WHERE account_id = ?`), id); err != nil {
		return storeErr("delete account", err)
	}
	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM loans WHERE account_id = ?`), id); err != nil {
		return storeErr("delete account", err)
	}
	res, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM accounts WHERE id = ?`), id)
	if err != nil {
		return storeErr("delete account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete account", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("delete account", err)
	}
	return nil
}

// AddTransaction records a transaction attempt
func (r *Repository) AddTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (rail_tx_id, amount, tx_date, src_account, dst_account, direction, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, r.rebind(query),
		nullRailID(t.RailID), t.Amount, models.FormatDay(t.Date),
		t.SourceID, t.DestinationID, string(t.Direction), string(t.Status)).
		Scan(&t.ID)
	if err != nil {
		return storeErr("add transaction", err)
	}
	return nil
}

// ListTransactions retrieves every recorded transaction in insertion order
func (r *Repository) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := `
		SELECT id, rail_tx_id, amount, tx_date, src_account, dst_account, direction, status
		FROM transactions
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var (
			t         models.Transaction
			railID    sql.NullInt64
			date      string
			direction string
			status    string
		)
		if err := rows.Scan(&t.ID, &railID, &t.Amount, &date, &t.SourceID, &t.DestinationID, &direction, &status); err != nil {
			return nil, storeErr("list transactions", err)
		}
		if t.Date, err = models.ParseDay(date); err != nil {
			return nil, storeErr("list transactions", err)
		}
		t.RailID = railID.Int64
		t.Direction = models.Direction(direction)
		t.Status = models.Status(status)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txs, nil
}

func (r *Repository) saveLoan(ctx context.Context, q querier, account *models.Account) error {
	loan := account.Loan
	if loan == nil {
		return nil
	}

	var settledOn sql.NullString
	if loan.SettledOn != nil {
		settledOn = sql.NullString{String: models.FormatDay(*loan.SettledOn), Valid: true}
	}
	if _, err := q.ExecContext(ctx, r.rebind(`INSERT INTO loans (account_id, debt, granted_on, settled_on) VALUES (?, ?, ?, ?)`),
		account.ID, loan.Debt, models.FormatDay(loan.GrantedOn), settledOn); err != nil {
		return storeErr("save loan", err)
	}

	query := r.rebind(`
		INSERT INTO loan_installments
			(account_id, seq, record_id, rail_tx_id, amount, direction, due_date, src_account, dst_account, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for seq, inst := range loan.Installments {
		var recordID sql.NullInt64
		if inst.ID != 0 {
			recordID = sql.NullInt64{Int64: inst.ID, Valid: true}
		}
		if _, err := q.ExecContext(ctx, query,
			account.ID, seq, recordID, nullRailID(inst.RailID), inst.Amount, string(inst.Direction),
			models.FormatDay(inst.Date), inst.SourceID, inst.DestinationID, string(inst.Status)); err != nil {
			return storeErr("save loan installment", err)
		}
	}
	return nil
}

func (r *Repository) loadLoan(ctx context.Context, q querier, accountID int64) (*models.Loan, error) {
	var (
		loan      models.Loan
		grantedOn string
		settledOn sql.NullString
	)
	err := q.QueryRowContext(ctx, r.rebind(`SELECT debt, granted_on, settled_on FROM loans WHERE account_id = ?`), accountID).
		Scan(&loan.Debt, &grantedOn, &settledOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("load loan", err)
	}
	if loan.GrantedOn, err = models.ParseDay(grantedOn); err != nil {
		return nil, storeErr("load loan", err)
	}
	if settledOn.Valid {
		day, err := models.ParseDay(settledOn.String)
		if err != nil {
			return nil, storeErr("load loan", err)
		}
		loan.SettledOn = &day
	}

	query := `
		SELECT record_id, rail_tx_id, amount, direction, due_date, src_account, dst_account, status
		FROM loan_installments
		WHERE account_id = ?
		ORDER BY seq`
	rows, err := q.QueryContext(ctx, r.rebind(query), accountID)
	if err != nil {
		return nil, storeErr("load loan installments", err)
	}
	defer rows.Close()

	loan.Installments = []models.Transaction{}
	for rows.Next() {
		var (
			inst      models.Transaction
			recordID  sql.NullInt64
			railID    sql.NullInt64
			direction string
			dueDate   string
			status    string
		)
		if err := rows.Scan(&recordID, &railID, &inst.Amount, &direction, &dueDate,
			&inst.SourceID, &inst.DestinationID, &status); err != nil {
			return nil, storeErr("load loan installments", err)
		}
		if inst.Date, err = models.ParseDay(dueDate); err != nil {
			return nil, storeErr("load loan installments", err)
		}
		inst.ID = recordID.Int64
		inst.RailID = railID.Int64
		inst.Direction = models.Direction(direction)
		inst.Status = models.Status(status)
		loan.Installments = append(loan.Installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("load loan installments", err)
	}
	return &loan, nil
}

func nullRailID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

var _ Store = (*Repository)(nil)
