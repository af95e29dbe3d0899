package relation

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// schema mirrors the index database written by the search indexer:
// one row per (attribute, value) pair of every object, keyed by its dn.
const schema = `CREATE TABLE IF NOT EXISTS avc (
	attribute TEXT,
	value     TEXT,
	class     TEXT,
	uid       TEXT
)`

type avcRow struct {
	Class     string `db:"class"`
	Attribute string `db:"attribute"`
	Value     string `db:"value"`
}

func readSQLite(path string) ([]Triple, error) {
	db, err := sqlx.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	defer db.Close()

	var rows []avcRow
	if err := db.Select(&rows, `SELECT class, attribute, value FROM avc
		GROUP BY class, attribute, value ORDER BY MIN(rowid)`); err != nil {
		return nil, fmt.Errorf("failed to query avc: %w", err)
	}

	triples := make([]Triple, 0, len(rows))
	for _, r := range rows {
		triples = append(triples, NewTriple(r.Class, r.Attribute, r.Value))
	}
	return triples, nil
}

// WriteSQLite stores rel into the avc table of the sqlite database at path,
// creating the table when missing. uid is left empty.
func WriteSQLite(rel *Relation, path string) error {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create avc table: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var insertErr error
	rel.Each(func(_ int, t Triple) bool {
		_, insertErr = tx.Exec(
			"INSERT INTO avc (attribute, value, class, uid) VALUES (?, ?, ?, '')",
			t[1], t[2], t[0],
		)
		return insertErr == nil
	})
	if insertErr != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert triple: %w", insertErr)
	}
	return tx.Commit()
}
