package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/natalchart/pkg/pipeline"
)

// oddsCommand creates the odds command: when the birth time is unknown it
// samples the whole day and reports how likely each sun sign is.
func (c *CLI) oddsCommand() *cobra.Command {
	var (
		opts    subjectOpts
		workers int
	)

	cmd := &cobra.Command{
		Use:   "odds",
		Short: "Sun sign odds for a birth date with unknown time",
		Long: fmt.Sprintf(`Sample the chart every %s across the birth date and report the
share of samples in which the Sun falls in each sign.`, pipeline.OddsStep),
		Example: `  natalchart odds --place "New York, NY" --date 1990-05-20`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			year, month, day, err := parseDate(opts.date)
			if err != nil {
				return err
			}
			loc, err := opts.location(cmd)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(ctx))
			spinner := newSpinnerWithContext(ctx, "Sampling the day...")
			spinner.Start()
			result, err := runner.Odds(ctx, pipeline.OddsOptions{
				Name:     opts.name,
				Place:    opts.place,
				Location: loc,
				Year:     year,
				Month:    month,
				Day:      day,
				Refresh:  opts.refresh,
				Workers:  workers,
			})
			spinner.Stop()
			if err != nil {
				return err
			}

			prog.done(fmt.Sprintf("Sampled %d charts", len(result.Samples)))
			date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			printInfo("Sun sign odds for %s in %s", date.Format(dateLayout), StyleHighlight.Render(result.Location.Name))
			fmt.Println(oddsTable(result.Odds))
			return nil
		},
	}

	opts.register(cmd, false)
	cmd.Flags().IntVarP(&workers, "workers", "w", pipeline.DefaultOddsWorkers, "concurrent chart requests")
	return cmd
}
