package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/db"
	"github.com/sells-group/lifemap/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Close does not close it.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS indicator_records (
	seq         INTEGER PRIMARY KEY,
	country     TEXT NOT NULL,
	year        INTEGER NOT NULL,
	values_json JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS country_features (
	seq          INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	name_long    TEXT NOT NULL DEFAULT '',
	formal_en    TEXT NOT NULL DEFAULT '',
	continent    TEXT NOT NULL DEFAULT '',
	feature_json JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS indicator_fields (
	seq   INTEGER PRIMARY KEY,
	key   TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_indicator_records_country ON indicator_records(country);
CREATE INDEX IF NOT EXISTS idx_country_features_continent ON country_features(continent);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveDataset(ctx context.Context, ds *dataset.Dataset) error {
	recRows := make([][]any, 0, len(ds.Records))
	for i, r := range ds.Records {
		values, err := encodeValues(r)
		if err != nil {
			return err
		}
		recRows = append(recRows, []any{i, r.Country, r.Year, values})
	}

	featRows := make([][]any, 0, len(ds.Features))
	for i := range ds.Features {
		f := &ds.Features[i]
		data, err := encodeFeature(f)
		if err != nil {
			return err
		}
		featRows = append(featRows, []any{i, f.Aliases.Name, f.Aliases.NameLong, f.Aliases.FormalEN, f.Continent, data})
	}

	fields := datasetFields(ds)
	fieldRows := make([][]any, 0, len(fields))
	for i, f := range fields {
		fieldRows = append(fieldRows, []any{i, f.Key, f.Label})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE indicator_records, country_features, indicator_fields`); err != nil {
		return eris.Wrap(err, "postgres: truncate snapshot")
	}
	if _, err := db.CopyFrom(ctx, tx, "indicator_records", recordColumns, recRows); err != nil {
		return eris.Wrap(err, "postgres: save records")
	}
	if _, err := db.CopyFrom(ctx, tx, "country_features", featureColumns, featRows); err != nil {
		return eris.Wrap(err, "postgres: save features")
	}
	if _, err := db.CopyFrom(ctx, tx, "indicator_fields", fieldColumns, fieldRows); err != nil {
		return eris.Wrap(err, "postgres: save fields")
	}
	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit save")
	}

	zap.L().Info("postgres: saved dataset",
		zap.Int("records", len(recRows)),
		zap.Int("features", len(featRows)),
	)
	return nil
}

func (s *PostgresStore) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{}

	rows, err := s.pool.Query(ctx, `SELECT country, year, values_json FROM indicator_records ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query records")
	}
	for rows.Next() {
		var (
			country string
			year    int
			values  []byte
		)
		if err := rows.Scan(&country, &year, &values); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		r, err := decodeRecord(country, year, values)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ds.Records = append(ds.Records, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate records")
	}

	frows, err := s.pool.Query(ctx, `SELECT feature_json FROM country_features ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query features")
	}
	for frows.Next() {
		var data []byte
		if err := frows.Scan(&data); err != nil {
			frows.Close()
			return nil, eris.Wrap(err, "postgres: scan feature")
		}
		f, err := decodeFeature(data)
		if err != nil {
			frows.Close()
			return nil, err
		}
		ds.Features = append(ds.Features, f)
	}
	frows.Close()
	if err := frows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate features")
	}

	var fields []model.Field
	fldRows, err := s.pool.Query(ctx, `SELECT key, label FROM indicator_fields ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query fields")
	}
	for fldRows.Next() {
		var f model.Field
		if err := fldRows.Scan(&f.Key, &f.Label); err != nil {
			fldRows.Close()
			return nil, eris.Wrap(err, "postgres: scan field")
		}
		fields = append(fields, f)
	}
	fldRows.Close()
	if err := fldRows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate fields")
	}

	return finishLoad(ds, fields)
}
