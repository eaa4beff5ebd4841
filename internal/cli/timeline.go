package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"boqtrack/internal/boq"
	"boqtrack/internal/schema"
	"boqtrack/internal/timeline"
)

func newTimelineCmd(app *App) *cobra.Command {
	var tlStart, tlEnd string

	cmd := &cobra.Command{
		Use:   "timeline <package-id>",
		Short: "Compute a ROP package's timeline placement and monthly spread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			res, _ := boq.Lookup("rop-packages")
			rec, err := app.API.Get(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}

			start, err := dateField(rec, "start_date")
			if err != nil {
				return err
			}
			end, err := dateField(rec, "end_date")
			if err != nil {
				return err
			}
			qty := floatField(rec, "qty")
			lead := int(floatField(rec, "lead_time_months"))

			// Default timeline: the package's own year.
			tls := time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
			tle := time.Date(start.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
			if tlStart != "" {
				if tls, err = time.Parse(schema.DateLayout, tlStart); err != nil {
					return fmt.Errorf("invalid --timeline-start: %w", err)
				}
			}
			if tlEnd != "" {
				if tle, err = time.Parse(schema.DateLayout, tlEnd); err != nil {
					return fmt.Errorf("invalid --timeline-end: %w", err)
				}
			}

			span, err := timeline.Place(tls, tle, start, end)
			if err != nil {
				return err
			}
			spread, err := timeline.SpreadMonthly(qty, start, end, lead)
			if err != nil {
				return err
			}

			months := make([]map[string]any, len(spread))
			for i, m := range spread {
				months[i] = map[string]any{
					"month": m.Month.Format("2006-01"),
					"qty":   m.Qty,
				}
			}
			return writeJSON(app, map[string]any{
				"package":         rec[res.Label],
				"offset_fraction": span.Offset,
				"width_fraction":  span.Width,
				"monthly":         months,
			})
		},
	}

	cmd.Flags().StringVar(&tlStart, "timeline-start", "", "Timeline start (YYYY-MM-DD), default: Jan 1 of the package's start year")
	cmd.Flags().StringVar(&tlEnd, "timeline-end", "", "Timeline end (YYYY-MM-DD), default: Jan 1 of the following year")
	return cmd
}

func dateField(rec map[string]any, name string) (time.Time, error) {
	s, _ := rec[name].(string)
	t, err := time.Parse(schema.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("record field %q is not a date: %q", name, s)
	}
	return t, nil
}

// floatField tolerates the numeric shapes JSON decoding produces.
func floatField(rec map[string]any, name string) float64 {
	switch v := rec[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}
