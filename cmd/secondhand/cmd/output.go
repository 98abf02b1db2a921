package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/viper"

	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printListingsTable(items []domain.Listing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tPRICE\tDESCRIPTION\n")
	for i := range items {
		tw.writef("%s\t%s\t$%.2f\t%s\n",
			items[i].ID,
			truncate(items[i].Title, 40),
			items[i].Price,
			truncate(items[i].Description, 50),
		)
	}
	return tw.finish()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
