package colorspace

import (
	"fmt"
	"testing"
)

func TestHexToHSL(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "red", value: "#ff0000", want: "0 100% 50%"},
		{name: "green_no_hash", value: "00ff00", want: "120 100% 50%"},
		{name: "blue", value: "#0000FF", want: "240 100% 50%"},
		{name: "white", value: "#ffffff", want: "0 0% 100%"},
		{name: "black", value: "#000000", want: "0 0% 0%"},
		{name: "gray", value: "#808080", want: "0 0% 50%"},
		{name: "tailwind_blue", value: "#3b82f6", want: "217 91% 60%"},
		{name: "zero_padded", value: "#ff", want: "0 100% 50%"},
		{name: "truncated", value: "#ff0000ee", want: "0 100% 50%"},
		{name: "empty", value: "", want: "0 0% 0%"},
		{name: "not_hex", value: "zzzzzz", want: "0 0% 0%"},
		{name: "signed", value: "+12345", want: "0 0% 0%"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := HexToHSL(test.value); got != test.want {
				t.Fatalf("HexToHSL(%q) = %q, want %q", test.value, got, test.want)
			}
		})
	}
}

func TestHSLToHex(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "red", value: "0 100% 50%", want: "#ff0000"},
		{name: "no_percent", value: "120 100 50", want: "#00ff00"},
		{name: "gray_rounds_half_up", value: "0 0% 50%", want: "#808080"},
		{name: "hue_wraps", value: "360 100% 50%", want: "#ff0000"},
		{name: "negative_hue", value: "-120 100% 50%", want: "#0000ff"},
		{name: "clamped", value: "0 150% 120%", want: "#ffffff"},
		{name: "clamped_low", value: "0 -20% -5%", want: "#000000"},
		{name: "tailwind_blue", value: "217 91% 60%", want: "#3c83f6"},
		{name: "dark_cyan_preimage", value: "192 100% 6%", want: "#00181e"},
		{name: "dark_blue_preimage", value: "213 100% 12%", want: "#001b3c"},
		{name: "saturated_white_preimage", value: "0 100% 100%", want: "#fffefe"},
		{name: "fractional_converts_directly", value: "192.0001 100% 6%", want: "#00181f"},
		{name: "single_token", value: "abc", want: "#000000"},
		{name: "two_tokens", value: "10 20%", want: "#000000"},
		{name: "non_numeric", value: "a b% c%", want: "#000000"},
		{name: "nan", value: "NaN 10% 10%", want: "#000000"},
		{name: "empty", value: "", want: "#000000"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := HSLToHex(test.value); got != test.want {
				t.Fatalf("HSLToHex(%q) = %q, want %q", test.value, got, test.want)
			}
		})
	}
}

func TestRoundTripStable(t *testing.T) {
	for _, hex := range []string{"#ff0000", "#808080", "#3b82f6", "#ffffff", "#000000", "#00ffff"} {
		first := HexToHSL(hex)
		second := HexToHSL(HSLToHex(first))
		if first != second {
			t.Fatalf("round trip for %s not stable: %q then %q", hex, first, second)
		}
		if third := HexToHSL(HSLToHex(second)); third != second {
			t.Fatalf("round trip for %s drifted: %q then %q", hex, second, third)
		}
	}
}

func TestRoundTripStableAcrossColorSpace(t *testing.T) {
	const stride = 101
	check := func(v int) {
		hex := fmt.Sprintf("#%06x", v)
		first := HexToHSL(hex)
		if second := HexToHSL(HSLToHex(first)); second != first {
			t.Errorf("round trip for %s not stable: %q then %q", hex, first, second)
		}
	}
	for v := 0; v <= 0xffffff; v += stride {
		check(v)
	}
	check(0xffffff)
}

func TestIsHex(t *testing.T) {
	if !IsHex(" #aabbcc ") {
		t.Fatalf("expected trimmed hex to be accepted")
	}
	if IsHex("217 91% 60%") {
		t.Fatalf("expected hsl triplet to be rejected")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
		hex   string
	}{
		{name: "hex", value: "#3B82F6", ok: true, hex: "#3b82f6"},
		{name: "hsl", value: "0 100% 50%", ok: true, hex: "#ff0000"},
		{name: "named_color", value: "rebeccapurple", ok: false},
		{name: "short_hex", value: "#abc", ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, ok := Parse(test.value)
			if ok != test.ok {
				t.Fatalf("Parse(%q) ok = %t, want %t", test.value, ok, test.ok)
			}
			if ok && c.Hex() != test.hex {
				t.Fatalf("Parse(%q) = %s, want %s", test.value, c.Hex(), test.hex)
			}
		})
	}
}
