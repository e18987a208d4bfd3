package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Summary describes one scrape run
type Summary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	OutputPath string         `json:"output_path,omitempty"`
	Records    int            `json:"records"`
	ByWorkshop map[string]int `json:"by_workshop"`
	Pages      map[string]int `json:"pages_fetched"`
	Rejections map[string]int `json:"rejections"`
	CacheSize  int            `json:"geocoder_cache_size"`
}

// WriteSummary writes the summary in the specified format
func WriteSummary(w io.Writer, summary *Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		return writeText(w, summary)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, summary *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// writeText outputs the summary as human-readable text
func writeText(w io.Writer, summary *Summary) error {
	if summary.Records == 0 {
		fmt.Fprintln(w, "No records emitted.")
	} else {
		fmt.Fprintf(w, "Records by workshop:\n")
		for _, name := range sortedKeys(summary.ByWorkshop) {
			fmt.Fprintf(w, "  %-32s %d\n", name, summary.ByWorkshop[name])
		}
	}

	if len(summary.Rejections) > 0 {
		fmt.Fprintf(w, "\nRejections:\n")
		for _, kind := range sortedKeys(summary.Rejections) {
			fmt.Fprintf(w, "  %-32s %d\n", kind, summary.Rejections[kind])
		}
	}

	if len(summary.Pages) > 0 {
		fmt.Fprintf(w, "\nPages fetched:\n")
		for _, family := range sortedKeys(summary.Pages) {
			fmt.Fprintf(w, "  %-32s %d\n", family, summary.Pages[family])
		}
	}

	fmt.Fprintf(w, "\nTotal: %d records across %d workshops\n", summary.Records, len(summary.ByWorkshop))
	if summary.OutputPath != "" {
		fmt.Fprintf(w, "Output: %s\n", summary.OutputPath)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
