// ABOUTME: Tests for ECG CSV parsing.
// ABOUTME: Covers metadata extraction, sample rows, and degenerate files.
package ecg

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleECG = `Name,John Appleseed
Date of Birth,1980-01-01
Recorded Date,2024-06-01 08:30:12 -0500
Classification,Sinus Rhythm
Symptoms,None
Software Version,2.0
Device,"Watch7,1"
Sample Rate,512 hertz per second
Lead,Lead I
Unit,µV

-12.5
4.0
15.25
-3
`

func writeECG(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecg.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write ecg: %v", err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	rec, err := ParseFile(writeECG(t, sampleECG))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if rec.RecordedDate != "2024-06-01 08:30:12 -0500" {
		t.Errorf("RecordedDate = %q", rec.RecordedDate)
	}
	if rec.Classification != "Sinus Rhythm" {
		t.Errorf("Classification = %q", rec.Classification)
	}
	if rec.Symptoms != "None" {
		t.Errorf("Symptoms = %q", rec.Symptoms)
	}
	if rec.SampleRateHz == nil || *rec.SampleRateHz != 512 {
		t.Errorf("SampleRateHz = %v, want 512", rec.SampleRateHz)
	}
	if rec.Lead != "Lead I" {
		t.Errorf("Lead = %q", rec.Lead)
	}
	if rec.Device != "Watch7,1" {
		t.Errorf("Device = %q", rec.Device)
	}

	want := []float64{-12.5, 4.0, 15.25, -3}
	if len(rec.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(rec.Samples), len(want))
	}
	for i, v := range want {
		if rec.Samples[i] != v {
			t.Errorf("sample %d = %v, want %v", i, rec.Samples[i], v)
		}
	}

	// Header keys without a dedicated column land in Extra.
	if rec.Extra["Name"] != "John Appleseed" {
		t.Errorf("Extra[Name] = %q", rec.Extra["Name"])
	}
}

func TestHeaderlessFile(t *testing.T) {
	rec, err := ParseFile(writeECG(t, "just some text\nmore text\n"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(rec.Samples) != 0 {
		t.Errorf("expected no samples, got %d", len(rec.Samples))
	}
	if rec.Classification != "" {
		t.Errorf("Classification = %q, want empty", rec.Classification)
	}
}

func TestNonNumericSingleFieldRowsIgnored(t *testing.T) {
	rec, err := ParseFile(writeECG(t, "Classification,Inconclusive\n\nnotanumber\n1.5\n"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(rec.Samples) != 1 || rec.Samples[0] != 1.5 {
		t.Errorf("Samples = %v, want [1.5]", rec.Samples)
	}
}

func TestSampleRateVariants(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"512 hertz", f(512)},
		{"300.5Hz", f(300.5)},
		{"hertz", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseSampleRate(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseSampleRate(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseSampleRate(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

func f(v float64) *float64 { return &v }
