package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importRecords   string
	importCountries string
	importDiscover  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the source documents and save them as the store snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		discover := cfg.Data.DiscoverFields
		if cmd.Flags().Changed("discover-fields") {
			discover = importDiscover
		}
		loader, err := newLoader(cfg, importRecords, importCountries, discover)
		if err != nil {
			return err
		}
		ds, err := loader.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "import")
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveDataset(ctx, ds); err != nil {
			return eris.Wrap(err, "save snapshot")
		}

		zap.L().Info("import complete",
			zap.String("driver", cfg.Store.Driver),
			zap.Int("records", len(ds.Records)),
			zap.Int("features", len(ds.Features)),
			zap.Int("fields", ds.Fields.Len()),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importRecords, "records", "", "records JSON or CSV location (default from config)")
	importCmd.Flags().StringVar(&importCountries, "countries", "", "countries GeoJSON location (default from config)")
	importCmd.Flags().BoolVar(&importDiscover, "discover-fields", false, "add every numeric record key to the field catalog (default from config)")
	rootCmd.AddCommand(importCmd)
}
