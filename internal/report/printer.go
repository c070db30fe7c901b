package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gkum4/vital-signs-decision-tree/internal/data"
	"github.com/gkum4/vital-signs-decision-tree/internal/evaluation"
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
)

// Printer renders trees and scores for a terminal.
type Printer struct {
	w      io.Writer
	attr   *color.Color
	answer *color.Color
	branch *color.Color
	head   *color.Color
	good   *color.Color
	bad    *color.Color
}

func NewPrinter(w io.Writer, colored bool) *Printer {
	p := &Printer{
		w:      w,
		attr:   color.New(color.FgCyan),
		answer: color.New(color.FgGreen),
		branch: color.New(color.FgYellow),
		head:   color.New(color.FgBlue, color.Bold),
		good:   color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
	}
	if !colored {
		for _, c := range []*color.Color{p.attr, p.answer, p.branch, p.head, p.good, p.bad} {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) label(n models.Node) string {
	switch n := n.(type) {
	case *models.Internal:
		return p.attr.Sprint(n.Attribute.String())
	case *models.Leaf:
		return p.answer.Sprintf("%s=%s", models.Class, n.Answer)
	default:
		return ""
	}
}

// Tree prints one line per level, root first. Every non-root entry is its
// incoming branch followed by the node's attribute, or by its class answer
// for a leaf.
func (p *Printer) Tree(tree *models.Tree) {
	for depth, row := range tree.Levels() {
		if depth == 0 {
			fmt.Fprintln(p.w, p.label(row[0]))
			continue
		}
		entries := make([]string, len(row))
		for i, n := range row {
			entries[i] = p.branch.Sprint(n.IncomingBranch().String()) + " " + p.label(n)
		}
		fmt.Fprintln(p.w, strings.Join(entries, " | "))
	}
}

func (p *Printer) Lookup(res evaluation.LookupResult) {
	fmt.Fprintf(p.w, "Correct percentage: %s (%d/%d",
		p.accuracy(res.Accuracy), res.Correct, res.Total)
	if res.Missing > 0 {
		fmt.Fprintf(p.w, ", %d ids not in reference", res.Missing)
	}
	fmt.Fprintln(p.w, ")")
}

func (p *Printer) accuracy(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	if v >= 0.5 {
		return p.good.Sprint(s)
	}
	return p.bad.Sprint(s)
}

func (p *Printer) Metrics(title string, m *evaluation.ClassificationMetrics) {
	fmt.Fprintln(p.w, p.head.Sprint(title))
	fmt.Fprint(p.w, m.FormatMetrics())

	fmt.Fprint(p.w, "Confusion matrix (rows true, cols predicted):\n     ")
	for _, c := range models.Severities() {
		fmt.Fprintf(p.w, "%5s", c)
	}
	fmt.Fprintln(p.w)
	for i, c := range models.Severities() {
		fmt.Fprintf(p.w, "%5s", c)
		for _, v := range m.ConfusionMatrix[i] {
			fmt.Fprintf(p.w, "%5d", v)
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) Stats(stats data.DatasetStats) {
	fmt.Fprintln(p.w, p.head.Sprint("Dataset"))
	fmt.Fprintf(p.w, "Samples: %d\n", stats.Samples)
	for _, cc := range stats.ClassDistribution {
		fmt.Fprintf(p.w, "  %s: %d\n", p.answer.Sprintf("%s=%s", models.Class, cc.Class), cc.Count)
	}
	for _, a := range stats.Attributes {
		fmt.Fprintf(p.w, "  %-12s min %s  max %s  mean %s\n",
			p.attr.Sprint(a.Attribute.String()), a.Min, a.Max, a.Mean.StringFixed(3))
	}
}

func (p *Printer) Predictions(predictions []models.Prediction) {
	for _, pr := range predictions {
		fmt.Fprintf(p.w, "%d,%s\n", pr.ID, pr.Class)
	}
}
