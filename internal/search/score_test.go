package search

import "testing"

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"abc", "abc", 100},
		{"abc", "xyz", 0},
		{"", "abc", 0},
		// one block "bcd" of size 3, total length 8: 2*3/8 = 75
		{"abcd", "bcde", 75},
		// blocks "itt" + "n": 2*4/13 = 61.5 rounds to 62
		{"kitten", "sitting", 62},
	}
	for _, c := range cases {
		if got := Ratio(c.a, c.b); got != c.want {
			t.Errorf("Ratio(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestRatioSymmetricOnEqualInputs(t *testing.T) {
	for _, s := range []string{"", "a", "light.bedroom", "Überraschung", "日本語テスト"} {
		if got := Ratio(s, s); got != 100 {
			t.Errorf("Ratio(%q, %q) = %d, want 100", s, s, got)
		}
	}
}

func TestScoreSelfMatch(t *testing.T) {
	for _, s := range []string{"", "bed", "light.bedroom", "Living Room Lamp", "sensor.außen_temperatur"} {
		if got := Score(s, s); got != 100 {
			t.Errorf("Score(%q, %q) = %d, want 100", s, s, got)
		}
	}
}

func TestScoreSubstring(t *testing.T) {
	cases := []struct {
		query, text string
	}{
		{"bed", "light.bedroom"},
		{"BED", "light.bedroom"},
		{"bed", "LIGHT.BEDROOM"},
		{"room", "Living Room Lamp"},
		{"", "anything"},
	}
	for _, c := range cases {
		if got := Score(c.query, c.text); got != 100 {
			t.Errorf("Score(%q, %q) = %d, want 100", c.query, c.text, got)
		}
	}
}

func TestScoreRange(t *testing.T) {
	queries := []string{"", "a", "bed", "bedroom light", "zzzz", "sensor.temperature", "日本語"}
	texts := []string{"", "light.bedroom", "switch.garage_door", "Front Porch", "日本語テスト", "x"}
	for _, q := range queries {
		for _, txt := range texts {
			got := Score(q, txt)
			if got < 0 || got > 100 {
				t.Errorf("Score(%q, %q) = %d, out of [0, 100]", q, txt, got)
			}
		}
	}
}

func TestScoreNoOverlap(t *testing.T) {
	if got := Score("qqq", "zzz"); got != 0 {
		t.Errorf("Score(qqq, zzz) = %d, want 0", got)
	}
}

func TestPartialRatio(t *testing.T) {
	cases := []struct {
		query, text string
		want        int
	}{
		{"light.turn_on", "service: light.turn_on, entity: light.bedroom", 100},
		{"abc", "abc", 100},
		{"", "whatever", 100},
		{"", "", 100},
		{"abc", "", 0},
		{"light.bedroom", "", 0},
	}
	for _, c := range cases {
		if got := PartialRatio(c.query, c.text); got != c.want {
			t.Errorf("PartialRatio(%q, %q) = %d, want %d", c.query, c.text, got, c.want)
		}
	}
}

func TestPartialRatioAtLeastFullRatio(t *testing.T) {
	// Scoring against the best window never does worse than scoring
	// against the whole string.
	pairs := [][2]string{
		{"bedrom", "light.bedroom"},
		{"garage", "cover.garage_door_main"},
		{"temp", "sensor.living_room_temperature"},
	}
	for _, p := range pairs {
		full := Score(p[0], p[1])
		partial := PartialRatio(p[0], p[1])
		if partial < full {
			t.Errorf("PartialRatio(%q, %q) = %d < Score %d", p[0], p[1], partial, full)
		}
		if partial < 0 || partial > 100 {
			t.Errorf("PartialRatio(%q, %q) = %d, out of [0, 100]", p[0], p[1], partial)
		}
	}
}
