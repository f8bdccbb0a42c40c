package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// runStats accumulates the counters a stress run reports at the end.
type runStats struct {
	Inserted   int
	Deleted    int
	GetHits    int
	GetMisses  int
	ScanRows   int
	Validated  bool
	ValidateMs int64
}

func printReport(title string, s runStats) {
	color.New(color.FgCyan, color.Bold).Println(title)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"inserted", fmt.Sprint(s.Inserted)})
	table.Append([]string{"deleted", fmt.Sprint(s.Deleted)})
	table.Append([]string{"get hits", fmt.Sprint(s.GetHits)})
	table.Append([]string{"get misses", fmt.Sprint(s.GetMisses)})
	table.Append([]string{"scan rows", fmt.Sprint(s.ScanRows)})
	table.Append([]string{"validated", fmt.Sprint(s.Validated)})
	table.Append([]string{"validate (ms)", fmt.Sprint(s.ValidateMs)})
	table.Render()
}

func printError(err error) {
	color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
}
