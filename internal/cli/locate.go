package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// locateCommand creates the locate command, which geocodes a place the way
// render does before fetching a chart.
func (c *CLI) locateCommand() *cobra.Command {
	var refresh, noCache bool

	cmd := &cobra.Command{
		Use:     "locate <place>",
		Short:   "Resolve a place to coordinates and UTC offset",
		Example: `  natalchart locate "New York, NY"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			query := strings.Join(args, " ")
			loc, cached, err := runner.Resolve(ctx, query, nil, refresh)
			if err != nil {
				return err
			}

			printSuccess("%s", StyleHighlight.Render(loc.Name))
			printKeyValue("Latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
			printKeyValue("Longitude", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
			printKeyValue("UTC offset", fmt.Sprintf("%+g", loc.UTCOffset))
			if cached {
				printDetail("from cache")
			}
			printNewline()
			printNextStep("Draw a chart", fmt.Sprintf("%s render --lat %g --lon %g --utc-offset %g --date YYYY-MM-DD", appName, loc.Lat, loc.Lon, loc.UTCOffset))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached answer")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache entirely")
	return cmd
}
