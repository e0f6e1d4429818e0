package repository

// Dialect selects the SQL flavour and the database/sql driver name
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// Dates are stored as YYYY-MM-DD text in both dialects.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT PRIMARY KEY,
		balance NUMERIC NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS loans (
		account_id BIGINT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
		debt NUMERIC NOT NULL,
		granted_on TEXT NOT NULL,
		settled_on TEXT
	);

	CREATE TABLE IF NOT EXISTS loan_installments (
		account_id BIGINT NOT NULL REFERENCES loans(account_id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		record_id BIGINT,
		rail_tx_id BIGINT,
		amount NUMERIC NOT NULL,
		direction TEXT NOT NULL,
		due_date TEXT NOT NULL,
		src_account BIGINT NOT NULL,
		dst_account BIGINT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (account_id, seq)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		rail_tx_id BIGINT,
		amount NUMERIC NOT NULL,
		tx_date TEXT NOT NULL,
		src_account BIGINT NOT NULL,
		dst_account BIGINT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT ''
	);`

// Amounts are TEXT in SQLite so decimals round-trip without float conversion.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS loans (
		account_id INTEGER PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
		debt TEXT NOT NULL,
		granted_on TEXT NOT NULL,
		settled_on TEXT
	);

	CREATE TABLE IF NOT EXISTS loan_installments (
		account_id INTEGER NOT NULL REFERENCES loans(account_id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		record_id INTEGER,
		rail_tx_id INTEGER,
		amount TEXT NOT NULL,
		direction TEXT NOT NULL,
		due_date TEXT NOT NULL,
		src_account INTEGER NOT NULL,
		dst_account INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (account_id, seq)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rail_tx_id INTEGER,
		amount TEXT NOT NULL,
		tx_date TEXT NOT NULL,
		src_account INTEGER NOT NULL,
		dst_account INTEGER NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT ''
	);`

func (d Dialect) schema() string {
	if d == Postgres {
		return postgresSchema
	}
	return sqliteSchema
}
