package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"colors-coach/internal/assessment"
	"colors-coach/internal/domain"
)

const barWidth = 30

var colorAttrs = map[domain.Color]color.Attribute{
	domain.ColorRed:    color.FgRed,
	domain.ColorYellow: color.FgYellow,
	domain.ColorGreen:  color.FgGreen,
	domain.ColorBlue:   color.FgBlue,
}

type printer struct {
	out   io.Writer
	color bool
	gen   *assessment.Generator
}

// newPrinter solo usa color cuando out es una terminal.
func newPrinter(out io.Writer, noColor bool) printer {
	return printer{
		out:   out,
		color: !noColor && isTerminal(out),
		gen:   assessment.NewGenerator(nil),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p printer) paint(s string, attrs ...color.Attribute) string {
	if !p.color {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (p printer) bold(s string) string { return p.paint(s, color.Bold) }
func (p printer) warn(s string) string { return p.paint(s, color.FgHiBlack) }

type jsonReport struct {
	Scores      domain.Scores        `json:"scores"`
	Totals      domain.ColorTotals   `json:"totals"`
	Percentages map[domain.Color]int `json:"percentages"`
	Order       []domain.Color       `json:"order,omitempty"`
	Analysis    domain.Analysis      `json:"analysis"`
}

func (p printer) report(scores domain.Scores, asJSON bool) error {
	ranking := assessment.Rank(scores)
	analysis := p.gen.Generate(scores)

	if asJSON {
		out := jsonReport{
			Scores:      scores,
			Totals:      ranking.Totals,
			Percentages: make(map[domain.Color]int, 4),
			Analysis:    analysis,
		}
		for _, c := range domain.AllColors() {
			out.Percentages[c] = ranking.Percentage(c)
		}
		if ranking.Total > 0 {
			out.Order = ranking.Order[:]
		}
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	kb := p.gen.KnowledgeBase()
	fmt.Fprintf(p.out, "%s a=%d b=%d c=%d d=%d\n\n", p.bold("Puntajes:"), scores.A, scores.B, scores.C, scores.D)
	if ranking.Total > 0 {
		for _, c := range ranking.Order {
			pct := ranking.Percentage(c)
			name := kb.Profile(c).Name
			fmt.Fprintf(p.out, "  %-9s %s %3d%% (%d)\n", name, p.paint(bar(pct), colorAttrs[c]), pct, ranking.Totals.Get(c))
		}
		fmt.Fprintln(p.out)
	}

	sections := []struct{ title, body string }{
		{"Vision general", analysis.General},
		{"Fortalezas", analysis.Strengths},
		{"Areas de desarrollo", analysis.Weaknesses},
		{"Recomendaciones", analysis.Recommendations},
	}
	for _, s := range sections {
		fmt.Fprintln(p.out, p.bold(s.title))
		fmt.Fprintln(p.out, s.body)
		fmt.Fprintln(p.out)
	}
	return nil
}

func bar(pct int) string {
	n := pct * barWidth / 100
	return strings.Repeat("#", n) + strings.Repeat(".", barWidth-n)
}
