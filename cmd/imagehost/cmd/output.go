package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/templui/imagehost/internal/client"
	"github.com/templui/imagehost/internal/gallery"
	"github.com/templui/imagehost/internal/model"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

// errReported ends a command whose failure was already printed as a notice
var errReported = errors.New("command failed")

// printer renders notices and tables. Errors go to stderr, everything else to stdout.
type printer struct {
	out    io.Writer
	errOut io.Writer
	errs   []error
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, errOut: errOut}
}

func (p *printer) Notify(n gallery.Notice) {
	switch n.Level {
	case gallery.LevelSuccess:
		green.Fprintln(p.out, n.Message)
	case gallery.LevelWarning:
		p.warn(n.Message)
	default:
		red.Fprintln(p.errOut, "error: "+n.Message)
		if n.Err != nil {
			p.errs = append(p.errs, n.Err)
		}
	}
}

func (p *printer) warn(msg string) {
	yellow.Fprintln(p.out, msg)
}

func (p *printer) fail(err error) {
	red.Fprintln(p.errOut, "error: "+client.Message(err))
}

// reported tells whether err was already shown as a notice
func (p *printer) reported(err error) bool {
	if errors.Is(err, errReported) {
		return true
	}
	for _, shown := range p.errs {
		if errors.Is(err, shown) {
			return true
		}
	}
	return false
}

func (p *printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
}

func when(t model.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t.Time)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (p *printer) images(images []*model.Image) {
	w := p.table()
	fmt.Fprintln(w, "ID\tFILENAME\tSIZE\tTYPE\tUPLOADED\tDESCRIPTION")
	for _, image := range images {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			image.ID,
			image.OriginalFilename,
			humanize.Bytes(uint64(max(image.Size, 0))),
			dash(image.ContentType),
			when(image.CreatedAt),
			dash(image.Description),
		)
	}
	_ = w.Flush()
}

func (p *printer) image(image *model.Image) {
	w := p.table()
	fmt.Fprintf(w, "ID:\t%d\n", image.ID)
	fmt.Fprintf(w, "Filename:\t%s\n", image.OriginalFilename)
	fmt.Fprintf(w, "Stored as:\t%s\n", dash(image.FilePath))
	fmt.Fprintf(w, "URL:\t%s\n", dash(image.URL))
	fmt.Fprintf(w, "Size:\t%s (%s bytes)\n", humanize.Bytes(uint64(max(image.Size, 0))), humanize.Comma(image.Size))
	fmt.Fprintf(w, "Type:\t%s\n", dash(image.ContentType))
	fmt.Fprintf(w, "Uploaded:\t%s\n", dash(image.CreatedAt.String()))
	fmt.Fprintf(w, "Description:\t%s\n", dash(image.Description))
	_ = w.Flush()
}

func (p *printer) conversions(items []*model.Conversion) {
	w := p.table()
	fmt.Fprintln(w, "ID\tFILENAME\tPAGES\tOUTPUT\tMARKDOWN\tCONVERTED")
	for _, c := range items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			c.ID,
			c.OriginalFilename,
			c.PageCount,
			dash(c.OutputFilename),
			dash(c.MarkdownPath),
			when(c.CreatedAt),
		)
	}
	_ = w.Flush()
}

func (p *printer) conversion(c *model.Conversion) {
	w := p.table()
	fmt.Fprintf(w, "ID:\t%d\n", c.ID)
	fmt.Fprintf(w, "Filename:\t%s\n", c.OriginalFilename)
	fmt.Fprintf(w, "Pages:\t%d\n", c.PageCount)
	fmt.Fprintf(w, "Word file:\t%s\n", dash(c.OutputFilename))
	fmt.Fprintf(w, "Markdown file:\t%s\n", dash(c.MarkdownPath))
	fmt.Fprintf(w, "Converted:\t%s\n", dash(c.CreatedAt.String()))
	_ = w.Flush()
}

func (p *printer) history(entries []*model.HistoryEntry) {
	w := p.table()
	fmt.Fprintln(w, "WHEN\tIMAGE\tFILENAME\tSOURCE\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			humanize.Time(e.CreatedAt.Local()),
			e.ImageID,
			e.Filename,
			e.Source,
			dash(e.URL),
		)
	}
	_ = w.Flush()
}

func (p *printer) progress(percent, attempted, total int) {
	faint.Fprintf(p.out, "[%d/%d] %d%%\n", attempted, total, percent)
}

func (p *printer) since(start time.Time) string {
	return time.Since(start).Round(10 * time.Millisecond).String()
}
