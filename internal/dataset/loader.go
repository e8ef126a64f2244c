package dataset

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lifemap/internal/fetcher"
	"github.com/sells-group/lifemap/internal/model"
)

// Loader fetches the records and countries documents.
type Loader struct {
	Fetcher      fetcher.Fetcher
	RecordsURL   string
	CountriesURL string

	// Fields is the base field catalog; DefaultFields when nil.
	Fields *model.FieldRegistry
	// DiscoverFields adds every numeric record key missing from Fields.
	DiscoverFields bool
}

// Load fetches and parses both documents. Nothing is returned until both
// have succeeded; any failure is a *LoadError naming the resource.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()

	var (
		records  []model.IndicatorRecord
		features []model.CountryFeature
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := l.loadRecords(gctx)
		if err != nil {
			return &LoadError{Resource: ResourceRecords, Location: l.RecordsURL, Err: err}
		}
		records = recs
		return nil
	})
	g.Go(func() error {
		feats, err := l.loadCountries(gctx)
		if err != nil {
			return &LoadError{Resource: ResourceCountries, Location: l.CountriesURL, Err: err}
		}
		features = feats
		return nil
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("dataset: load failed", zap.Error(err))
		return nil, err
	}

	fields := l.Fields
	if fields == nil {
		fields = model.DefaultFields()
	}
	fields = model.NewFieldRegistry(fields.Fields)
	if l.DiscoverFields {
		fields.Discover(records)
	}

	zap.L().Info("dataset: loaded",
		zap.Int("records", len(records)),
		zap.Int("features", len(features)),
		zap.Int("fields", fields.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Dataset{Records: records, Features: features, Fields: fields}, nil
}

func (l *Loader) loadRecords(ctx context.Context) ([]model.IndicatorRecord, error) {
	body, err := l.Fetcher.Download(ctx, l.RecordsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	if IsCSV(l.RecordsURL) {
		return DecodeRecordsCSV(ctx, body)
	}
	return DecodeRecordsJSON(ctx, body)
}

func (l *Loader) loadCountries(ctx context.Context) ([]model.CountryFeature, error) {
	body, err := l.Fetcher.Download(ctx, l.CountriesURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	return DecodeCountries(body)
}
