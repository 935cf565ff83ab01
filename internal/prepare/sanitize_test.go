package prepare

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2 years", 2},
		{"2 years 6 months", 3},
		{"2 years 3 months", 2},
		{"1 year", 1},
		{"10 Years", 10},
		{"3 years, 11 months", 4},
		{"", 0},
		{"   ", 0},
		{"5", 5},
		{"2.5", 2.5},
		{"abc", 0},
		{"-3", 0},
	}
	for _, c := range cases {
		if got := SanitizeDuration(c.in); got != c.want {
			t.Errorf("SanitizeDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDuration_DistinguishesZeroFromUnparseable(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0 years", 0, true},
		{"0", 0, true},
		{"2 years", 2, true},
		{"", 0, false},
		{"   ", 0, false},
		{"a while", 0, false},
		{"-3", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDuration(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseDuration(%q) = %v, %v, want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSanitizeExperience_GenuineZeroNotAudited(t *testing.T) {
	var audit Audit

	if got := sanitizeExperience("0 years", "P1", "exp_se", &audit); got != 0 {
		t.Errorf("sanitizeExperience(\"0 years\") = %v, want 0", got)
	}
	if n := audit.Defaulted(); n != 0 {
		t.Errorf("genuine zero audited as default: defaulted = %d, want 0", n)
	}

	if got := sanitizeExperience("a while", "P1", "exp_se", &audit); got != 0 {
		t.Errorf("sanitizeExperience(\"a while\") = %v, want 0", got)
	}
	if n := audit.Defaulted(); n != 1 {
		t.Errorf("unparseable answer not audited: defaulted = %d, want 1", n)
	}

	// Blank answers are missing, not defaults.
	sanitizeExperience("", "P1", "exp_re", &audit)
	if n := audit.Defaulted(); n != 1 {
		t.Errorf("blank answer audited: defaulted = %d, want 1", n)
	}
}

func TestSanitizeYesNo(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"No", false},
		{" no ", false},
		{"NO", false},
		{"Yes", true},
		{"Yes, extensively", true},
		{"maybe", true},
		{"", false},
		{"  ", false},
	}
	for _, c := range cases {
		if got := SanitizeYesNo(c.in); got != c.want {
			t.Errorf("SanitizeYesNo(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSanitizeIndicator(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2", 2},
		{"0", 0},
		{"-1", 0},
		{"Yes", 1},
		{"no", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := SanitizeIndicator(c.in); got != c.want {
			t.Errorf("SanitizeIndicator(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPrimaryRole(t *testing.T) {
	// (RE=0, PO=0, Arch=2, Dev=2, rest=0): first max in fixed order wins.
	values := []int{0, 0, 2, 2, 0, 0, 0, 0}
	if got := PrimaryRole(values); got != "architect" {
		t.Errorf("PrimaryRole = %q, want architect", got)
	}
}

func TestPrimaryRole_AllZero(t *testing.T) {
	if got := PrimaryRole(make([]int, 8)); got != "none" {
		t.Errorf("PrimaryRole = %q, want none", got)
	}
}

func TestPrimaryRole_SingleRole(t *testing.T) {
	values := []int{0, 0, 0, 0, 0, 0, 0, 1}
	if got := PrimaryRole(values); got != "manager" {
		t.Errorf("PrimaryRole = %q, want manager", got)
	}
}

func TestRescale(t *testing.T) {
	got := Rescale([]float64{0, 2, 4, 8})
	want := []float64{0, 0.25, 0.5, 1.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rescale mismatch (-want +got):\n%s", diff)
	}
}

func TestRescale_AllZeros(t *testing.T) {
	got := Rescale([]float64{0, 0, 0})
	for i, v := range got {
		if v != 0 {
			t.Errorf("Rescale zeros[%d] = %v, want 0", i, v)
		}
	}
}
