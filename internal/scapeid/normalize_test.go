package scapeid

import "testing"

func TestNormalizeCanonicalNames(t *testing.T) {
	cases := map[string]string{
		"signal-mimic":   "signal-mimic",
		"Signal_Mimic":   "signal-mimic",
		"  signalmimic ": "signal-mimic",
		"mimic":          "signal-mimic",
		"cart-pole-lite": "cart-pole-lite",
		"CartPole":       "cart-pole-lite",
		"cart_pole_lite": "cart-pole-lite",
		"maze":           "maze",
		"Custom Scape":   "custom-scape",
		"":               "",
		"---":            "",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeMode(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"gt":         "gt",
		"Train":      "gt",
		"training":   "gt",
		"val":        "validation",
		"VALIDATION": "validation",
		"validate":   "validation",
		"test":       "test",
		"testing":    "test",
		"probe":      "probe",
	}
	for input, want := range cases {
		if got := NormalizeMode(input); got != want {
			t.Fatalf("NormalizeMode(%q) = %q, want %q", input, got, want)
		}
	}
}
