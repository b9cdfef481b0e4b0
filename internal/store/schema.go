package store

// Table and DDL for the single bikes table. The statement is idempotent so
// Init may run on every open.
const (
	createBikes = `CREATE TABLE IF NOT EXISTS bikes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model TEXT NOT NULL,
    brand TEXT NOT NULL,
    built_year INTEGER,
    year INTEGER,
    price REAL
);`

	insertBike = `INSERT INTO bikes (model, brand, built_year, year, price) VALUES (?, ?, ?, ?, ?)`

	selectBikes = `SELECT id, model, brand, built_year, year, price FROM bikes ORDER BY id ASC`
)
