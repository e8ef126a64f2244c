package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/render"
	"github.com/sells-group/lifemap/internal/selection"
	"github.com/sells-group/lifemap/internal/views"
)

var (
	reportCountries  []string
	reportContinents []string
	reportField      string
	reportYear       string
	reportWidth      int
	reportFromStore  bool
)

// reportOptions are the control values one report is drawn for.
type reportOptions struct {
	Countries  []string
	Continents []string
	Field      string
	Year       string
	Width      int
	Views      views.Options
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard views for a selection",
	Example: `  lifemap report --country Chad --country Afghanistan --year 2004
  lifemap report --continent Africa --field GDP`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context(), cfg, reportFromStore)
		if err != nil {
			return err
		}

		field := reportField
		if field == "" {
			field = cfg.Views.DefaultField
		}
		year := reportYear
		if year == "" {
			year = fmt.Sprint(cfg.Views.DefaultYear)
		}

		return runReport(os.Stdout, ds, reportOptions{
			Countries:  reportCountries,
			Continents: reportContinents,
			Field:      field,
			Year:       year,
			Width:      reportWidth,
			Views:      viewOptions(cfg),
		})
	},
}

// runReport applies the continent filters, then toggles each country in
// order, and prints the resulting views followed by one tooltip per
// country.
func runReport(w io.Writer, ds *dataset.Dataset, opts reportOptions) error {
	year, err := model.ParseYear(opts.Year)
	if err != nil {
		return eris.Wrap(err, "report")
	}

	data := views.NewData(ds)
	field, err := data.Fields.Lookup(opts.Field)
	if err != nil {
		return eris.Wrap(err, "report")
	}

	sel := selection.NewModel(data.Features)
	if len(opts.Continents) > 0 {
		sel.ApplyContinentFilters(opts.Continents)
	}
	aliases := make([]model.CountryAliases, len(opts.Countries))
	for i, name := range opts.Countries {
		aliases[i] = model.CountryAliases{Name: name}
		if f, ok := data.Feature(name); ok {
			aliases[i] = f.Aliases
		}
		sel.Toggle(aliases[i])
	}

	snap, err := views.NewSynchronizer(data, opts.Views).Sync(views.Input{
		Selection: sel,
		Field:     field.Key,
		Year:      year,
	})
	if err != nil {
		return eris.Wrap(err, "report")
	}

	p := render.NewPrinter(w, opts.Width)
	if _, err := fmt.Fprintln(w, p.Snapshot(snap)); err != nil {
		return eris.Wrap(err, "report: write")
	}
	for _, a := range aliases {
		tip := views.ResolveTooltip(a, data.Index, field, year)
		if _, err := fmt.Fprintln(w, p.Tooltip(tip)); err != nil {
			return eris.Wrap(err, "report: write")
		}
	}
	return nil
}

func init() {
	reportCmd.Flags().StringArrayVar(&reportCountries, "country", nil, "country to toggle, in order (repeatable)")
	reportCmd.Flags().StringArrayVar(&reportContinents, "continent", nil, "continent to check (repeatable)")
	reportCmd.Flags().StringVar(&reportField, "field", "", "indicator field (default from config)")
	reportCmd.Flags().StringVar(&reportYear, "year", "", "year (default from config)")
	reportCmd.Flags().IntVar(&reportWidth, "width", render.DefaultWidth, "longest bar length")
	reportCmd.Flags().BoolVar(&reportFromStore, "from-store", false, "read the dataset snapshot from the store")
	rootCmd.AddCommand(reportCmd)
}
