package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Critical lipgloss.Color
	High     lipgloss.Color
	Medium   lipgloss.Color
	Heading  lipgloss.Color
	Hint     lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Critical: lipgloss.Color("#FF005F"), // red
	High:     lipgloss.Color("#FFAF00"), // amber
	Medium:   lipgloss.Color("#5FAFD7"), // light blue
	Heading:  lipgloss.Color("#00D787"), // green
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
}

// renderer writes human-readable tables, styled only on a terminal.
type renderer struct {
	w      io.Writer
	theme  Theme
	styled bool
	mask   bool
}

func newRenderer(w io.Writer, maskIDs bool) *renderer {
	return &renderer{w: w, theme: defaultTheme, styled: isTerminal(w), mask: maskIDs}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *renderer) paint(style lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return style.Render(text)
}

func (r *renderer) heading(format string, args ...any) {
	title := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.w, r.paint(lipgloss.NewStyle().Foreground(r.theme.Heading).Bold(true), title))
	fmt.Fprintln(r.w, strings.Repeat("═", len([]rune(title))))
}

func (r *renderer) hint(format string, args ...any) {
	fmt.Fprintln(r.w, r.paint(lipgloss.NewStyle().Foreground(r.theme.Hint).Italic(true), fmt.Sprintf(format, args...)))
}

func (r *renderer) id(s string) string {
	if r.mask {
		return models.MaskID(s)
	}
	return s
}

func (r *renderer) level(l models.RiskLevel) string {
	color := r.theme.Medium
	switch l {
	case models.RiskCritical:
		color = r.theme.Critical
	case models.RiskHigh:
		color = r.theme.High
	}
	return r.paint(lipgloss.NewStyle().Foreground(color).Bold(l == models.RiskCritical), strings.ToUpper(string(l)))
}

func (r *renderer) severity(v float64) string {
	text := fmt.Sprintf("%.3f", v)
	switch {
	case v >= 0.8:
		return r.paint(lipgloss.NewStyle().Foreground(r.theme.Critical).Bold(true), text)
	case v >= 0.6:
		return r.paint(lipgloss.NewStyle().Foreground(r.theme.High), text)
	}
	return text
}

// table returns a writer that takes tab-separated lines, the first being the
// header, and renders them as aligned columns on Flush.
func (r *renderer) table() *tableWriter {
	return &tableWriter{r: r}
}

// tableWriter buffers tab-separated lines for lipgloss/table, which measures
// cells by visible width so styled cells stay aligned.
type tableWriter struct {
	r   *renderer
	buf bytes.Buffer
}

func (t *tableWriter) Write(p []byte) (int, error) { return t.buf.Write(p) }

// Flush renders the buffered lines and resets the writer.
func (t *tableWriter) Flush() error {
	lines := strings.Split(strings.TrimSuffix(t.buf.String(), "\n"), "\n")
	t.buf.Reset()
	if len(lines) == 0 || lines[0] == "" {
		return nil
	}

	cell := lipgloss.NewStyle().PaddingRight(2)
	header := cell.Bold(t.r.styled)
	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(strings.Split(lines[0], "\t")...)
	for _, line := range lines[1:] {
		tbl.Row(strings.Split(line, "\t")...)
	}
	_, err := fmt.Fprintln(t.r.w, tbl.Render())
	return err
}

// pairs prints ranked pairs, numbered from 1.
func (r *renderer) pairs(pairs []models.ProximityPair) {
	tw := r.table()
	fmt.Fprintln(tw, "#\tENTITY\tNAME\tPARTY\tDONATION\tAMOUNT\tAWARD\tAMOUNT\tAGENCY\tDAYS\tSEVERITY")
	for i, p := range pairs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%+d\t%s\n",
			i+1,
			r.id(p.EntityID),
			truncate(p.EntityName, 30),
			p.Donation.Party,
			p.Donation.Date.Format("2006-01-02"),
			formatAmount(p.Donation.Amount),
			p.Contract.AwardDate.Format("2006-01-02"),
			formatAmount(p.Contract.Amount),
			truncate(p.Contract.Agency, 24),
			p.DeltaDays,
			r.severity(p.Severity),
		)
	}
	_ = tw.Flush()
}

// formatAmount renders a decimal with two places and comma thousands groups.
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
