package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lifemap/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS indicator_records`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDataset(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE indicator_records, country_features, indicator_fields`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"indicator_records"}, recordColumns).WillReturnResult(3)
	mock.ExpectCopyFrom(pgx.Identifier{"country_features"}, featureColumns).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"indicator_fields"}, fieldColumns).WillReturnResult(2)
	mock.ExpectCommit()

	require.NoError(t, s.SaveDataset(context.Background(), testDataset()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDataset_RollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"indicator_records"}, recordColumns).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.SaveDataset(context.Background(), testDataset())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: save records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadDataset(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT country, year, values_json FROM indicator_records ORDER BY seq`).
		WillReturnRows(pgxmock.NewRows([]string{"country", "year", "values_json"}).
			AddRow("Chad", 2001, []byte(`{"Life expectancy":46.5,"GDP":null}`)).
			AddRow("Chad", 2000, []byte(`{"Life expectancy":46}`)))
	mock.ExpectQuery(`SELECT feature_json FROM country_features ORDER BY seq`).
		WillReturnRows(pgxmock.NewRows([]string{"feature_json"}).
			AddRow([]byte(`{"type":"Feature","id":"Chad","properties":{"name":"Chad","continent":"Africa"},"geometry":{"type":"Point","coordinates":[19,15]}}`)))
	mock.ExpectQuery(`SELECT key, label FROM indicator_fields ORDER BY seq`).
		WillReturnRows(pgxmock.NewRows([]string{"key", "label"}).
			AddRow(model.LifeExpectancyField, "Life Expectancy"))

	ds, err := s.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, ds.Records, 2)
	assert.Equal(t, 2001, ds.Records[0].Year, "seq order is kept")
	assert.False(t, ds.Records[0].Has("GDP"))
	require.Len(t, ds.Features, 1)
	assert.Equal(t, "Africa", ds.Features[0].Continent)
	assert.Equal(t, 1, ds.Fields.Len())
}

func TestPostgresStore_LoadDataset_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM indicator_records`).
		WillReturnRows(pgxmock.NewRows([]string{"country", "year", "values_json"}))
	mock.ExpectQuery(`FROM country_features`).
		WillReturnRows(pgxmock.NewRows([]string{"feature_json"}))
	mock.ExpectQuery(`FROM indicator_fields`).
		WillReturnRows(pgxmock.NewRows([]string{"key", "label"}))

	_, err := s.LoadDataset(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadDataset_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM indicator_records`).WillReturnError(errors.New("connection reset"))

	_, err := s.LoadDataset(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: query records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CloseWithoutPool(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	assert.NoError(t, s.Close())
}
