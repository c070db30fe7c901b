package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gkum4/vital-signs-decision-tree/internal/data"
	"github.com/gkum4/vital-signs-decision-tree/internal/evaluation"
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"github.com/shopspring/decimal"
)

func TestTreeBreadthFirst(t *testing.T) {
	two := decimal.NewFromInt(2)
	ninety := decimal.NewFromInt(90)
	tree := &models.Tree{Root: &models.Internal{
		Attribute: models.PressureQuality,
		Threshold: two,
		Left:      &models.Leaf{Incoming: models.LessOrEqual(two), Answer: models.SeverityOne},
		Right: &models.Internal{
			Incoming:  models.Greater(two),
			Attribute: models.Pulse,
			Threshold: ninety,
			Left:      &models.Leaf{Incoming: models.LessOrEqual(ninety), Answer: models.SeverityTwo},
			Right:     &models.Leaf{Incoming: models.Greater(ninety), Answer: models.SeverityFour},
		},
	}}

	var buf bytes.Buffer
	NewPrinter(&buf, false).Tree(tree)

	want := "qPA\n" +
		"<= 2 classe=1 | > 2 pulso\n" +
		"<= 90 classe=2 | > 90 classe=4\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected rendering:\n got: %q\nwant: %q", got, want)
	}
}

func TestTreeLeafRoot(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Tree(&models.Tree{Root: &models.Leaf{Answer: models.SeverityThree}})
	if got := buf.String(); got != "classe=3\n" {
		t.Fatalf("expected single leaf line, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Lookup(evaluation.LookupResult{Correct: 3, Total: 4, Missing: 1, Accuracy: 0.75})

	got := buf.String()
	if !strings.Contains(got, "Correct percentage: 0.7500 (3/4, 1 ids not in reference)") {
		t.Fatalf("unexpected lookup line %q", got)
	}
}

func TestMetricsAndStats(t *testing.T) {
	m, err := evaluation.CalculateMetrics(
		[]models.SeverityClass{models.SeverityOne, models.SeverityTwo},
		[]models.SeverityClass{models.SeverityOne, models.SeverityOne},
	)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Metrics("Holdout", m)
	p.Stats(data.NewDataValidator().GetDatasetStats([]models.Instance{
		{ID: 1, Vitals: models.NewVitals(1, 60, 12), Class: models.SeverityOne},
	}))
	p.Predictions([]models.Prediction{{ID: 5, Class: models.SeverityTwo}})

	out := buf.String()
	for _, want := range []string{"Holdout", "Accuracy: 0.5000", "Samples: 1", "classe=1: 1", "pulso", "5,2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
