package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestRupees(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{55000, "₹55,000.00"},
		{123456.5, "₹1,23,456.50"},
		{12345678.125, "₹1,23,45,678.13"},
		{-2500, "-₹2,500.00"},
	}
	for _, tt := range tests {
		if got := Rupees(tt.in); got != tt.want {
			t.Errorf("Rupees(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBadgeColorIsStable(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range []string{"CSE", "ECE", "MECH", "CIVIL", "EEE", "IT", "Physics", "Chemistry"} {
		c := BadgeColor(name)
		if c != BadgeColor(name) {
			t.Errorf("%s changed colour", name)
		}
		found := false
		for _, p := range Palette {
			found = found || p == c
		}
		if !found {
			t.Errorf("%s got %q, not in palette", name, c)
		}
		seen[c] = true
	}
	// names of equal length may differ in colour
	if len(seen) < 2 {
		t.Errorf("every department got the same colour")
	}
}

func TestEmit(t *testing.T) {
	v := struct {
		Name  string `json:"name" yaml:"name"`
		Count int    `json:"count" yaml:"count"`
	}{"CSE", 3}

	tests := []struct {
		format Format
		want   string
	}{
		{JSON, "{\n  \"name\": \"CSE\",\n  \"count\": 3\n}\n"},
		{YAML, "name: CSE\ncount: 3\n"},
		{Table, "CSE  3\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			p := New(&buf, tt.format)
			err := p.Emit(v, func(p *Printer) {
				p.Printf("%s  %d\n", v.Name, v.Count)
			})
			if err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRowsAlign(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Table).Rows([]string{"ID", "DEVICE"}, [][]string{{"r-1", "Laptop"}, {"r-100", "Oscilloscope"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	col := strings.Index(lines[0], "DEVICE")
	for _, l := range lines[1:] {
		if strings.Index(l, "Laptop") != col && strings.Index(l, "Oscilloscope") != col {
			t.Errorf("misaligned row %q", l)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Table, "TABLE": Table, "json": JSON, "yml": YAML} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "[..........]"},
		{45, "[#####.....]"},
		{100, "[##########]"},
		{140, "[##########]"},
		{-3, "[..........]"},
	}
	for _, tt := range tests {
		if got := Bar(tt.pct, 10); got != tt.want {
			t.Errorf("Bar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
