package journal

// Timestamps are unix milliseconds (exchange bar-open times come in ms).
//
// The partial unique index on orders is what makes "at most one open
// position" a storage invariant instead of an in-memory convention: a second
// INSERT with status='open' fails at the write path.
const Schema = `
CREATE TABLE IF NOT EXISTS candles (
	ts INTEGER NOT NULL,
	pair TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	UNIQUE (ts, pair, timeframe)
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	ts INTEGER NOT NULL,
	pair TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	stop REAL NOT NULL,
	target REAL NOT NULL,
	status TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_single_open
	ON orders(status) WHERE status = 'open';

CREATE TABLE IF NOT EXISTS logs (
	ts INTEGER NOT NULL,
	state TEXT NOT NULL,
	decision TEXT NOT NULL,
	pnl REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs(ts);
`
