package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cashbook/internal/ledger"
	"cashbook/internal/report"
)

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputJSON  = "json"
)

// printer writes either a table for people or JSON for scripts. In auto
// mode a terminal gets tables and anything else gets JSON.
type printer struct {
	w    io.Writer
	json bool
}

func (c *cli) printer(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	asJSON := c.output == outputJSON
	if c.output == outputAuto {
		f, ok := w.(*os.File)
		asJSON = !ok || !term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: w, json: asJSON}
}

// emit prints v as JSON, or calls table with a tab-aligned writer.
func (p *printer) emit(v any, table func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// message prints a confirmation line, or {"message": ...} in JSON mode.
func (p *printer) message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		return p.emit(map[string]string{"message": msg}, nil)
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func statsLine(w io.Writer, s ledger.Stats) {
	fmt.Fprintf(w, "\nNet Balance: %s   Total In (+): %s   Total Out (-): %s\n",
		report.FormatAmount(s.NetBalance), report.FormatAmount(s.TotalIn), report.FormatAmount(s.TotalOut))
}

func loanStatsLine(w io.Writer, s ledger.LoanStats) {
	fmt.Fprintf(w, "\nNet Balance: %s   Given: %s   Taken: %s\n",
		report.FormatAmount(s.NetBalance), report.FormatAmount(s.TotalGiven), report.FormatAmount(s.TotalTaken))
}
