package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"stackctl/internal/supervisor"
	"stackctl/pkg/types"
)

// printResults renders lifecycle outcomes, one row per requested name.
func printResults(w io.Writer, results []supervisor.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tOUTCOME\tPID\tDETAIL")
	for _, res := range results {
		pid := "-"
		if res.PID > 0 {
			pid = strconv.Itoa(res.PID)
		}
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Name, res.Outcome, pid, detail)
	}
	tw.Flush()
}

func printSmoke(w io.Writer, results []types.SmokeResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tOUTCOME\tDETAIL")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Service, res.Outcome, res.Detail)
	}
	tw.Flush()
}
