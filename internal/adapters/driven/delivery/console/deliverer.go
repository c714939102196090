package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// Ensure Deliverer implements the interface.
var _ driven.Deliverer = (*Deliverer)(nil)

// Deliverer writes digests and failure notices to an io.Writer.
type Deliverer struct {
	mu     sync.Mutex
	out    io.Writer
	styles *Styles
	loc    *time.Location
}

// New creates a console deliverer. Times are shown in loc (UTC when nil).
// Colour is enabled only when out is a terminal.
func New(out io.Writer, loc *time.Location) *Deliverer {
	if loc == nil {
		loc = time.UTC
	}

	styles := PlainStyles()
	if IsTerminal(out) {
		styles = NewStyles(lipgloss.NewRenderer(out), DefaultTheme())
	}

	return &Deliverer{out: out, styles: styles, loc: loc}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Deliver renders the digest and writes it in one call.
func (d *Deliverer) Deliver(ctx context.Context, digest domain.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := d.Render(digest)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := io.WriteString(d.out, text); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}

// NotifyFailure writes a one-line failure notice.
func (d *Deliverer) NotifyFailure(_ context.Context, runID string, cause error) error {
	msg := fmt.Sprintf("marketbrief run %s failed: %v", shortID(runID), cause)

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := fmt.Fprintln(d.out, d.styles.Down.Render(msg))
	return err
}

// Render formats a digest as text.
func (d *Deliverer) Render(digest domain.Digest) string {
	s := d.styles
	var b strings.Builder

	generated := digest.GeneratedAt.In(d.loc)
	b.WriteString(s.Title.Render("Market Brief " + generated.Format("Mon 02 Jan 2006 15:04 MST")))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("run " + shortID(digest.RunID)))
	b.WriteString("\n")

	if len(digest.Prices) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Section.Render("Prices"))
		b.WriteString("\n")
		for _, p := range digest.Prices {
			fmt.Fprintf(&b, "  %-6s %s %s  %s\n",
				p.Symbol, p.Price.StringFixed(2), p.Currency, d.change(p.ChangePercent, "%"))
		}
	}

	if len(digest.Quotes) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Section.Render("Markets"))
		b.WriteString("\n")
		for _, q := range digest.Quotes {
			b.WriteString(d.quoteLine(q))
		}
	}

	for _, cat := range domain.AllCategories() {
		items, ok := digest.Sections[cat]
		if !ok {
			continue
		}
		b.WriteString("\n")
		b.WriteString(s.Section.Render(fmt.Sprintf("%s (%d)", cat.Label(), len(items))))
		b.WriteString("\n")
		if len(items) == 0 {
			b.WriteString(s.Muted.Render("  No new items."))
			b.WriteString("\n")
			continue
		}
		for i, item := range items {
			d.itemLines(&b, i+1, item)
		}
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("%d item(s) delivered", digest.ItemCount())
	if digest.Rejected > 0 {
		summary += fmt.Sprintf(", %d rejected by verification", digest.Rejected)
	}
	b.WriteString(s.Muted.Render(summary))
	b.WriteString("\n")

	if n := digest.Degraded(); n > 0 {
		b.WriteString(s.Warning.Render(fmt.Sprintf("%d source(s) degraded", n)))
		b.WriteString("\n")
		for _, e := range digest.Errors {
			b.WriteString(s.Muted.Render("  - " + e))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (d *Deliverer) quoteLine(q domain.MarketQuote) string {
	name := q.Symbol
	if q.Name != "" && q.Name != q.Symbol {
		name = q.Name + " (" + q.Symbol + ")"
	}

	line := fmt.Sprintf("  %s  %s %s  %s %s",
		name,
		q.Price.StringFixed(2),
		q.Currency,
		d.change(q.Change, ""),
		d.change(q.ChangePercent, "%"),
	)
	if q.DayLow.Valid && q.DayHigh.Valid {
		line += fmt.Sprintf("  range %s-%s", q.DayLow.Decimal.StringFixed(2), q.DayHigh.Decimal.StringFixed(2))
	}
	if q.Session != "" {
		line += "  " + d.styles.Muted.Render("["+string(q.Session)+"]")
	}
	return line + "\n"
}

func (d *Deliverer) itemLines(b *strings.Builder, n int, item domain.VerifiedItem) {
	s := d.styles
	fmt.Fprintf(b, "  %d. %s\n", n, s.Normal.Render(item.Title))

	meta := []string{item.Source}
	if item.Published != nil {
		meta = append(meta, item.Published.In(d.loc).Format("02 Jan 15:04"))
	}
	meta = append(meta, item.URL)
	b.WriteString("     ")
	b.WriteString(s.Muted.Render(strings.Join(meta, " | ")))
	b.WriteString("\n")

	if item.Note != "" {
		b.WriteString("     ")
		b.WriteString(s.Warning.Render("note: " + item.Note))
		b.WriteString("\n")
	}
}

// change renders a signed, coloured decimal with two places.
func (d *Deliverer) change(v decimal.Decimal, suffix string) string {
	text := v.StringFixed(2) + suffix
	switch {
	case v.IsPositive():
		return d.styles.Up.Render("+" + text)
	case v.IsNegative():
		return d.styles.Down.Render(text)
	default:
		return text
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
