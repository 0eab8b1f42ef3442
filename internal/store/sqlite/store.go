// Package sqlite is the persistence layer for the bookstore core.
//
// Each aggregate is one row: books and coupons as plain columns, cart and
// order line items as JSON TEXT (frozen value objects, never joined back to
// the catalog at read time). The two cross-order shared counters, book
// stock and coupon used_count, are only ever changed through conditional
// UPDATEs whose affected-row count is checked, so concurrent requests can
// never drive them past their bounds.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa.
package sqlite

import (
	"database/sql"
	"fmt"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite avoids CGO, which keeps Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
    id              TEXT PRIMARY KEY,
    title           TEXT    NOT NULL,
    author          TEXT    NOT NULL DEFAULT '',
    price           TEXT    NOT NULL,
    discount_price  TEXT    NOT NULL DEFAULT '0',
    image           TEXT    NOT NULL DEFAULT '',

    -- Mutated only by the inventory ledger via conditional UPDATE.
    stock           INTEGER NOT NULL CHECK (stock >= 0),

    created_at      TEXT    NOT NULL,
    updated_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS coupons (
    -- Uppercase code; normalised before every read and write.
    code                TEXT PRIMARY KEY,
    discount_type       TEXT    NOT NULL,
    discount_value      TEXT    NOT NULL,
    min_order_value     TEXT    NOT NULL DEFAULT '0',
    max_discount_amount TEXT    NOT NULL DEFAULT '0',
    start_date          TEXT    NOT NULL,
    end_date            TEXT    NOT NULL,
    usage_limit         INTEGER NOT NULL DEFAULT 0,

    -- Mutated only by the coupon usage ledger via conditional UPDATE.
    used_count          INTEGER NOT NULL DEFAULT 0 CHECK (used_count >= 0),

    is_active           INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS carts (
    -- One cart per user; the row is created lazily on first access.
    user_id     TEXT PRIMARY KEY,

    -- JSON array of line items {book_id, quantity, price}.
    items       TEXT    NOT NULL DEFAULT '[]',
    total_items INTEGER NOT NULL DEFAULT 0,
    total_price TEXT    NOT NULL DEFAULT '0',
    updated_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id               TEXT PRIMARY KEY,
    user_id          TEXT    NOT NULL,

    -- JSON array of frozen line-item snapshots {book_id, title, quantity, price, image}.
    items            TEXT    NOT NULL,

    -- JSON shipping address captured from the checkout payload.
    shipping_address TEXT    NOT NULL,
    payment_method   TEXT    NOT NULL,

    -- Price breakdown computed once at creation, never recomputed.
    items_price      TEXT    NOT NULL,
    shipping_price   TEXT    NOT NULL,
    discount_amount  TEXT    NOT NULL,
    total_price      TEXT    NOT NULL,

    -- JSON {code, discount_amount} snapshot, NULL when no coupon was applied.
    coupon_applied   TEXT,

    status           TEXT    NOT NULL,
    is_paid          INTEGER NOT NULL DEFAULT 0,
    paid_at          TEXT,

    -- JSON gateway payment result payload, stored verbatim.
    payment_result   TEXT,
    cancel_reason    TEXT    NOT NULL DEFAULT '',
    created_at       TEXT    NOT NULL,
    updated_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at);

-- Append-only transition log: one immutable row per order status change.
CREATE TABLE IF NOT EXISTS order_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id    TEXT NOT NULL,
    from_status TEXT NOT NULL DEFAULT '',
    to_status   TEXT NOT NULL,
    actor_id    TEXT NOT NULL DEFAULT '',
    note        TEXT NOT NULL DEFAULT '',

    -- W3C trace_id / span_id of the active OTel span, for jumping from a
    -- transition row straight to the distributed trace.
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',

    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, created_at);
`

// Store bundles the per-aggregate repositories over one SQLite handle.
type Store struct {
	db *sql.DB

	Books   *BookStore
	Coupons *CouponStore
	Carts   *CartStore
	Orders  *OrderStore
	Events  *EventStore
}

// Open opens (or creates) the SQLite database at path and applies the
// schema. busy_timeout waits for locks instead of failing immediately.
//
//	st, err := sqlite.Open("./data/bookstore.db")
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	s := &Store{db: db}
	s.Books = &BookStore{db: db}
	s.Coupons = &CouponStore{db: db}
	s.Carts = &CartStore{db: db}
	s.Orders = &OrderStore{db: db}
	s.Events = &EventStore{db: db}
	return s, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of empty TEXT.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
