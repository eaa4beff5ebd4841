package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"boqtrack/internal/boq"
	"boqtrack/internal/csvcodec"
	"boqtrack/internal/resource"
)

func newImportCmd(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "import <resource> <file.csv>",
		Short: "Upload a CSV file into a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			res, ok := boq.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown resource %q, one of: %v", args[0], boq.Names())
			}

			// Validate headers locally before shipping anything.
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			table, err := csvcodec.Decode(f)
			f.Close()
			if err != nil {
				return err
			}
			if _, err := csvcodec.MatchHeader(table.Header, res.Schema); err != nil {
				report(app, err.Error(), resource.KindError)
				return err
			}
			if check {
				fmt.Fprintf(app.out(), "header ok, %d data rows\n", len(table.Rows))
				return nil
			}

			f, err = os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			result, err := app.API.UploadCSV(cmd.Context(), res, filepath.Base(args[1]), f)
			if err != nil {
				report(app, err.Error(), resource.KindError)
				return err
			}
			report(app, fmt.Sprintf("imported %d rows into %s", result.Inserted, res.Name), resource.KindSuccess)
			for _, e := range result.Errors {
				fmt.Fprintln(app.out(), "row error:", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Validate the header only, upload nothing")
	return cmd
}
