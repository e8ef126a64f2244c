package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/config"
	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/fetcher"
	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/session"
	"github.com/sells-group/lifemap/internal/store"
	"github.com/sells-group/lifemap/internal/views"
)

// newLoader builds a dataset loader from config. Empty overrides fall back
// to the configured locations.
func newLoader(c *config.Config, recordsURL, countriesURL string, discover bool) (*dataset.Loader, error) {
	if recordsURL == "" {
		recordsURL = c.Data.RecordsURL
	}
	if countriesURL == "" {
		countriesURL = c.Data.CountriesURL
	}

	fields, err := loadFields(c)
	if err != nil {
		return nil, err
	}

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
	})

	return &dataset.Loader{
		Fetcher:        fetcher.NewRouter(httpFetcher),
		RecordsURL:     recordsURL,
		CountriesURL:   countriesURL,
		Fields:         fields,
		DiscoverFields: discover,
	}, nil
}

func loadFields(c *config.Config) (*model.FieldRegistry, error) {
	if c.Data.FieldsFile == "" {
		return model.DefaultFields(), nil
	}
	return model.LoadFieldsFile(c.Data.FieldsFile)
}

// openStore opens and migrates the configured snapshot store.
func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(c.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadDataset reads the dataset from its source documents, or from the
// snapshot store when fromStore is set.
func loadDataset(ctx context.Context, c *config.Config, fromStore bool) (*dataset.Dataset, error) {
	if !fromStore {
		l, err := newLoader(c, "", "", c.Data.DiscoverFields)
		if err != nil {
			return nil, err
		}
		return l.Load(ctx)
	}

	st, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	ds, err := st.LoadDataset(ctx)
	if err != nil {
		return nil, &dataset.LoadError{Resource: "snapshot", Location: c.Store.Driver, Err: err}
	}
	zap.L().Info("loaded dataset snapshot",
		zap.String("driver", c.Store.Driver),
		zap.Int("records", len(ds.Records)),
		zap.Int("features", len(ds.Features)),
	)
	return ds, nil
}

// checkDefaultField fails when views.default_field is not in the loaded
// catalog, since every session would start on a field it cannot render.
func checkDefaultField(c *config.Config, ds *dataset.Dataset) error {
	fields := ds.Fields
	if fields == nil {
		fields = model.DefaultFields()
	}
	if _, err := fields.Lookup(c.Views.DefaultField); err != nil {
		return eris.Wrap(err, "views.default_field is not in the field catalog; set data.fields_file or data.discover_fields")
	}
	return nil
}

func sessionDefaults(c *config.Config) session.Defaults {
	return session.Defaults{
		Field: c.Views.DefaultField,
		Year:  c.Views.DefaultYear,
		Views: viewOptions(c),
	}
}

func viewOptions(c *config.Config) views.Options {
	return views.Options{
		LineYearMin: c.Views.LineYearMin,
		LineYearMax: c.Views.LineYearMax,
	}
}
