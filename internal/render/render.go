package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/oxtoacart/bpool"
	"github.com/rs/zerolog/log"

	"github.com/lthummus/qlock/internal/db"
	"github.com/lthummus/qlock/internal/durations"
	"github.com/lthummus/qlock/internal/harness"
)

const (
	BufferPoolSize = 8

	timeFormat = "2006-01-02 15:04:05"
)

var bufpool = bpool.NewBufferPool(BufferPoolSize)

func status(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

// write renders the table in full before anything reaches w so a failed
// render never leaves half a table on the terminal.
func write(w io.Writer, name string, t table.Writer) error {
	buf := bufpool.Get()
	defer bufpool.Put(buf)

	t.SetStyle(table.StyleLight)
	buf.WriteString(t.Render())
	buf.WriteString("\n")

	_, err := buf.WriteTo(w)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("error writing table")
		return fmt.Errorf("render: %s: could not write table: %w", name, err)
	}
	return nil
}

func Results(w io.Writer, results []*harness.Result) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Lock", "Workers", "Expected", "Counted", "Max Inside", "Elapsed", "Status"})

	passed := 0
	for i, curr := range results {
		if curr.Passed() {
			passed++
		}
		t.AppendRow(table.Row{
			i + 1,
			curr.Kind,
			curr.Workers,
			curr.Expected,
			curr.Counted,
			curr.MaxInside,
			durations.NiceDuration(curr.Elapsed),
			status(curr.Passed()),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "passed", fmt.Sprintf("%d/%d", passed, len(results))})

	return write(w, "Results", t)
}

func History(w io.Writer, trials []*db.TrialRecord) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Started", "Lock", "Workers", "Depth", "Elapsed", "Status", "Error"})

	for _, curr := range trials {
		t.AppendRow(table.Row{
			strings.Split(curr.ID.String(), "-")[0],
			curr.Started.Format(timeFormat),
			curr.Kind,
			curr.Workers,
			curr.Depth,
			durations.NiceDuration(curr.Elapsed),
			status(curr.Passed()),
			curr.Error,
		})
	}

	return write(w, "History", t)
}
