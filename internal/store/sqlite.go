package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS indicator_records (
	seq         INTEGER PRIMARY KEY,
	country     TEXT NOT NULL,
	year        INTEGER NOT NULL,
	values_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS country_features (
	seq          INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	name_long    TEXT NOT NULL DEFAULT '',
	formal_en    TEXT NOT NULL DEFAULT '',
	continent    TEXT NOT NULL DEFAULT '',
	feature_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS indicator_fields (
	seq   INTEGER PRIMARY KEY,
	key   TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_indicator_records_country ON indicator_records(country);
CREATE INDEX IF NOT EXISTS idx_country_features_continent ON country_features(continent);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"indicator_records", "country_features", "indicator_fields"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s", table)
		}
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO indicator_records (seq, country, year, values_json) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare records")
	}
	defer recStmt.Close() //nolint:errcheck
	for i, r := range ds.Records {
		values, err := encodeValues(r)
		if err != nil {
			return err
		}
		if _, err := recStmt.ExecContext(ctx, i, r.Country, r.Year, string(values)); err != nil {
			return eris.Wrapf(err, "sqlite: insert record %d", i)
		}
	}

	featStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO country_features (seq, name, name_long, formal_en, continent, feature_json) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare features")
	}
	defer featStmt.Close() //nolint:errcheck
	for i := range ds.Features {
		f := &ds.Features[i]
		data, err := encodeFeature(f)
		if err != nil {
			return err
		}
		if _, err := featStmt.ExecContext(ctx, i,
			f.Aliases.Name, f.Aliases.NameLong, f.Aliases.FormalEN, f.Continent, string(data),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert feature %s", f.Aliases.Name)
		}
	}

	for i, fld := range datasetFields(ds) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO indicator_fields (seq, key, label) VALUES (?, ?, ?)`, i, fld.Key, fld.Label,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert field %s", fld.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit save")
	}
	zap.L().Info("sqlite: saved dataset",
		zap.Int("records", len(ds.Records)),
		zap.Int("features", len(ds.Features)),
	)
	return nil
}

func (s *SQLiteStore) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT country, year, values_json FROM indicator_records ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var (
			country, values string
			year            int
		)
		if err := rows.Scan(&country, &year, &values); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		r, err := decodeRecord(country, year, []byte(values))
		if err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate records")
	}

	frows, err := s.db.QueryContext(ctx, `SELECT feature_json FROM country_features ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query features")
	}
	defer frows.Close() //nolint:errcheck
	for frows.Next() {
		var data string
		if err := frows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan feature")
		}
		f, err := decodeFeature([]byte(data))
		if err != nil {
			return nil, err
		}
		ds.Features = append(ds.Features, f)
	}
	if err := frows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate features")
	}

	var fields []model.Field
	fldRows, err := s.db.QueryContext(ctx, `SELECT key, label FROM indicator_fields ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query fields")
	}
	defer fldRows.Close() //nolint:errcheck
	for fldRows.Next() {
		var f model.Field
		if err := fldRows.Scan(&f.Key, &f.Label); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan field")
		}
		fields = append(fields, f)
	}
	if err := fldRows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate fields")
	}

	return finishLoad(ds, fields)
}
