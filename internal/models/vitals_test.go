package models

import (
	"errors"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestValueClassPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic when asking for the class attribute")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNotContinuous) {
			t.Fatalf("expected ErrNotContinuous panic, got %v", r)
		}
	}()
	NewVitals(1, 2, 3).Value(Class)
}

func TestValueContinuous(t *testing.T) {
	v := NewVitals(8.5, 72, 16)
	for attr, want := range map[Attribute]string{PressureQuality: "8.5", Pulse: "72", Breathing: "16"} {
		if got := v.Value(attr).String(); got != want {
			t.Errorf("%s: expected %s, got %s", attr, want, got)
		}
	}
}

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		in   string
		want Attribute
	}{
		{"qPA", PressureQuality},
		{"QPA", PressureQuality},
		{"pressure_quality", PressureQuality},
		{" pulso ", Pulse},
		{"pulse", Pulse},
		{"respiração", Breathing},
		{norm.NFD.String("respiração"), Breathing},
		{"breathing", Breathing},
		{"classe", Class},
	}

	for _, tt := range tests {
		got, err := ParseAttribute(tt.in)
		if err != nil {
			t.Errorf("ParseAttribute(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAttribute(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}

	if _, err := ParseAttribute("temperature"); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestParseSeverityClass(t *testing.T) {
	for _, c := range Severities() {
		got, err := ParseSeverityClass(c.Code())
		if err != nil {
			t.Fatalf("unexpected error for code %d: %v", c.Code(), err)
		}
		if got != c {
			t.Fatalf("expected %s, got %s", c, got)
		}
	}

	for _, code := range []int{0, 5, -1} {
		if _, err := ParseSeverityClass(code); !errors.Is(err, ErrUnknownSeverity) {
			t.Errorf("code %d: expected ErrUnknownSeverity, got %v", code, err)
		}
	}
}

func TestContinuousAttributesExcludeClass(t *testing.T) {
	for _, a := range ContinuousAttributes() {
		if !a.IsContinuous() {
			t.Fatalf("%s reported as not continuous", a)
		}
	}
	if Class.IsContinuous() {
		t.Fatal("class must not be continuous")
	}
}
