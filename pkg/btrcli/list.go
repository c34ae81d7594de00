package btrcli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/function61/btrbackup/pkg/duration"
	"github.com/function61/btrbackup/pkg/layout"
	"github.com/olekukonko/tablewriter"
)

func list(op listOp, wd *workdir) error {
	dirs, err := wd.selectDirs(op.selector)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		return errNoLogicalDirs
	}

	if err := layout.ReadErrors(dirs); err != nil {
		return err
	}

	header, rows := listRows(dirs, op.count, op.all, wd.now())

	if op.table {
		printTable(wd.out, header, rows)
		return nil
	}

	return printTabSeparated(wd.out, rows)
}

// one row per shown snapshot. dirs without snapshots still get a row.
func listRows(dirs []layout.LogicalDir, count bool, all bool, now time.Time) ([]string, [][]string) {
	header := []string{"Logical dir", "Snapshot", "Age"}
	if count {
		header = append(header, "Count")
	}

	rows := [][]string{}

	for _, dir := range dirs {
		snapshots := dir.Snapshots()

		shown := snapshots
		if !all && len(shown) > 1 {
			shown = shown[:1]
		}

		row := func(snapshot string, age string) []string {
			if count {
				return []string{dir.Name, snapshot, age, strconv.Itoa(len(snapshots))}
			}
			return []string{dir.Name, snapshot, age}
		}

		if len(shown) == 0 {
			rows = append(rows, row("-", "-"))
			continue
		}

		for _, snapshot := range shown {
			rows = append(rows, row(snapshot.Name, duration.Ago(snapshot.Timestamp, now)))
		}
	}

	return header, rows
}

func printTable(out io.Writer, header []string, rows [][]string) {
	tbl := tablewriter.NewWriter(out)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetBorder(false)
	tbl.SetHeader(header)

	for _, row := range rows {
		tbl.Append(row)
	}

	tbl.Render()
}

// for scripts
func printTabSeparated(out io.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(out, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return nil
}
