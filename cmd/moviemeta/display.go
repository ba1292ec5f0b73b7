package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"moviemeta/internal/enrich"
)

type displayMode int

const (
	displayQuiet displayMode = iota
	displayProgress
	displayVerbose
)

const bannerRule = "---------------------------------------------------------------"

// chooseDisplay picks the rendering for a run. Verbose always wins; the
// progress bar is only drawn on terminals.
func chooseDisplay(verbose, progress bool, out io.Writer) displayMode {
	switch {
	case verbose:
		return displayVerbose
	case progress && isTerminal(out):
		return displayProgress
	default:
		return displayQuiet
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type palette struct {
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

func newPalette(colorize bool) palette {
	p := palette{
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.green, p.red, p.yellow} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// fetchDisplay renders engine events to the terminal.
type fetchDisplay struct {
	out    io.Writer
	mode   displayMode
	colors palette
	bar    *progressbar.ProgressBar
}

func newFetchDisplay(out io.Writer, mode displayMode) *fetchDisplay {
	return &fetchDisplay{
		out:    out,
		mode:   mode,
		colors: newPalette(isTerminal(out)),
	}
}

func (d *fetchDisplay) OnStart(total int) {
	switch d.mode {
	case displayVerbose:
		fmt.Fprintln(d.out, bannerRule)
		fmt.Fprintf(d.out, "--------------- FETCHING METADATA FOR %d MOVIES ---------------\n", total)
		fmt.Fprintln(d.out, bannerRule)
	case displayProgress:
		if total == 0 {
			return
		}
		d.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(d.out),
			progressbar.OptionSetDescription("Fetching metadata"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)
	}
}

func (d *fetchDisplay) OnClassified(ev enrich.Event, p enrich.Progress) {
	switch d.mode {
	case displayVerbose:
		fmt.Fprintln(d.out, d.verboseLine(ev, p))
	case displayProgress:
		if d.bar != nil {
			d.resizeBar(p.Total)
			_ = d.bar.Add(1)
		}
	}
}

// resizeBar shrinks the bar when a classification covered later titles too.
func (d *fetchDisplay) resizeBar(total int) {
	if total > 0 && total != d.bar.GetMax() {
		d.bar.ChangeMax(total)
	}
}

func (d *fetchDisplay) verboseLine(ev enrich.Event, p enrich.Progress) string {
	width := len(strconv.Itoa(p.Total))
	counter := fmt.Sprintf("%0*d/%d", width, p.Classified, p.Total)
	status := d.colors.red.Sprint("Not Found:")
	if ev.Found {
		status = d.colors.green.Sprint("Updated:")
	}
	return fmt.Sprintf("%s - \t%s\t%q", counter, status, ev.Label())
}

func (d *fetchDisplay) OnRestart(r enrich.Restart) {
	if d.mode != displayVerbose {
		return
	}
	fmt.Fprintln(d.out, d.colors.yellow.Sprintf("Restarting after %q (pass %d): %s",
		r.Candidate.Title, r.Pass, restartReason(r.Err)))
}

func (d *fetchDisplay) OnDone(summary enrich.Summary) {
	if d.bar != nil {
		d.resizeBar(summary.Total)
		_ = d.bar.Finish()
	}
}

func restartReason(err error) string {
	if err == nil {
		return "aborted"
	}
	return err.Error()
}

// printSummary writes the closing lines of a fetch.
func (d *fetchDisplay) printSummary(found, notFound, total int, summary enrich.Summary) {
	if d.mode == displayQuiet {
		return
	}
	fmt.Fprintln(d.out, d.colors.green.Sprintf("Fetched metadata for %s of %s movies",
		humanize.Comma(int64(found)), humanize.Comma(int64(total))))
	if notFound > 0 {
		fmt.Fprintln(d.out, d.colors.red.Sprintf("%s movies were not found", humanize.Comma(int64(notFound))))
	}
	if summary.Restarts > 0 {
		fmt.Fprintf(d.out, "%s after %s\n",
			pluralize(summary.Restarts, "restart", "restarts"), summary.Elapsed.Round(time.Millisecond))
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), plural)
}

var _ enrich.Observer = (*fetchDisplay)(nil)
