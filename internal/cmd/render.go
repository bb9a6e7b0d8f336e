package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"ainews/domain"
	"ainews/internal/control"
)

const (
	titleWidth  = 60
	sourceWidth = 24
)

func newTable(colorize bool) table.Writer {
	tw := table.NewWriter()
	if colorize {
		tw.SetStyle(table.StyleRounded)
		tw.Style().Color.Header = text.Colors{text.Bold}
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

func renderItems(items []domain.NewsItem, colorize bool) string {
	tw := newTable(colorize)
	tw.AppendHeader(table.Row{"Published", "Source", "Score", "Img", "Title"})
	for _, it := range items {
		tw.AppendRow(table.Row{
			it.PublishedAt.UTC().Format("2006-01-02 15:04"),
			truncate(it.Source, sourceWidth),
			it.Score,
			yesNo(it.HasImage()),
			truncate(it.Title, titleWidth),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	return tw.Render()
}

func renderSummary(s domain.RunSummary, colorize bool) string {
	tw := newTable(colorize)
	tw.AppendHeader(table.Row{"Source", "Fetched", "Created", "Updated", "Skipped", "Error"})
	for _, r := range s.Sources {
		errText := ""
		if r.Err != nil {
			errText = truncate(r.Err.Error(), titleWidth)
		}
		tw.AppendRow(table.Row{r.Name, r.Fetched, r.Created, r.Updated, r.Skipped, errText})
	}
	t := s.Totals()
	tw.AppendFooter(table.Row{"Total", t.Fetched, t.Created, t.Updated, t.Skipped, strconv.Itoa(len(s.Failed())) + " failed"})
	cfgs := make([]table.ColumnConfig, 0, 4)
	for col := 2; col <= 5; col++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s finished in %s\n", s.ID, s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	b.WriteString(tw.Render())
	return b.String()
}

func renderStatus(st control.StatusResponse, now time.Time) string {
	var b strings.Builder
	state := "idle"
	if st.Running {
		state = "crawling"
	}
	fmt.Fprintf(&b, "Interval: %s\n", st.Interval)
	fmt.Fprintf(&b, "State:    %s\n", state)
	if st.NextRun != nil {
		fmt.Fprintf(&b, "Next run: %s (in %s)\n", st.NextRun.Local().Format(time.DateTime), st.NextRun.Sub(now).Round(time.Second))
	}
	if st.LastRun == nil {
		b.WriteString("Last run: none yet")
		return b.String()
	}
	r := st.LastRun
	fmt.Fprintf(&b, "Last run: %s (%s) at %s\n", r.ID, r.Trigger, r.FinishedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "          fetched %d, created %d, updated %d, skipped %d", r.Fetched, r.Created, r.Updated, r.Skipped)
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, "\n          failed: %s", strings.Join(r.Failed, ", "))
	}
	return b.String()
}

// truncate shortens s to w terminal cells, counting wide runes as two.
func truncate(s string, w int) string {
	return runewidth.Truncate(s, w, "…")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
