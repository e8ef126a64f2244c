package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lifemap/internal/model"
)

var fieldsDiscover bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the indicator field catalog as YAML",
	Long:  "Prints the field catalog in the data.fields_file format. With --discover, every numeric key found in the records is added.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !fieldsDiscover {
			fields, err := loadFields(cfg)
			if err != nil {
				return err
			}
			return writeFields(os.Stdout, fields)
		}

		loader, err := newLoader(cfg, "", "", true)
		if err != nil {
			return err
		}
		ds, err := loader.Load(cmd.Context())
		if err != nil {
			return err
		}
		return writeFields(os.Stdout, ds.Fields)
	},
}

func writeFields(w io.Writer, fields *model.FieldRegistry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fields.Fields); err != nil {
		return eris.Wrap(err, "encode fields")
	}
	return enc.Close()
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsDiscover, "discover", false, "load the records and add every numeric key")
	rootCmd.AddCommand(fieldsCmd)
}
