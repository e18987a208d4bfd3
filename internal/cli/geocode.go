package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/fresque-scraper/internal/location"
	"github.com/pfrederiksen/fresque-scraper/internal/record"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

// geocodeResult is printed by the geocode command
type geocodeResult struct {
	Query     string            `json:"query"`
	Address   *location.Address `json:"address,omitempty"`
	Rejection string            `json:"rejection,omitempty"`
	Detail    string            `json:"detail,omitempty"`
}

func newGeocodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <location text>",
		Short: "Resolve one venue string the way scrape would",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			geo := location.NewNominatim(a.cfg.Geocoder.BaseURL, a.cfg.Geocoder.UserAgent, a.cfg.Geocoder.Timeout, a.cfg.Geocoder.MinInterval)
			resolver := location.NewResolver(geo, nil)

			result := geocodeResult{Query: query}
			addr, err := resolver.Resolve(cmd.Context(), query)
			if err != nil {
				kind, ok := reject.KindOf(err)
				if !ok {
					return err
				}
				result.Rejection = kind.String()
				result.Detail = err.Error()
			} else {
				result.Address = addr
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func newWorkshopsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "workshops",
		Short: "List the workshop catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workshops := record.Workshops()
			switch OutputFormat(strings.ToLower(format)) {
			case FormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(workshops)
			case FormatText:
				for _, w := range workshops {
					fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", w.Code, w.Name)
				}
				return nil
			default:
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
