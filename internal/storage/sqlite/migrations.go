package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as decimal strings to keep two-decimal arithmetic exact;
// REAL would reintroduce float drift at the persistence boundary.
const schema = `
CREATE TABLE IF NOT EXISTS friends (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    balance TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    ref TEXT NOT NULL,
    PRIMARY KEY (group_id, position),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    category TEXT NOT NULL,
    type TEXT NOT NULL,
    paid_by TEXT NOT NULL,
    group_id TEXT,
    ref TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transaction_splits (
    transaction_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    ref TEXT NOT NULL,
    share TEXT NOT NULL,
    PRIMARY KEY (transaction_id, position),
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friends_name ON friends(name);
CREATE INDEX IF NOT EXISTS idx_transactions_group ON transactions(group_id);
`

// runMigrations applies the schema to the database.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
