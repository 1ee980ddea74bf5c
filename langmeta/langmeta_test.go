package langmeta

import (
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ko", want: "ko"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"ko_KR":  "ko",
		" EN-us": "en",
		"zh-TW":  "zh",
		"j4":     "",
		"  ":     "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	for _, code := range []string{"en", "ko", "ja", "zh", "es", "fr", "de", "ko-KR"} {
		if !IsSupported(code) {
			t.Fatalf("IsSupported(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"ru", "", "english"} {
		if IsSupported(code) {
			t.Fatalf("IsSupported(%q) = true, want false", code)
		}
	}
}

func TestCodesOrder(t *testing.T) {
	want := []string{"en", "ko", "ja", "zh", "es", "fr", "de"}
	if got := Codes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Codes() = %v, want %v", got, want)
	}
	if !IsSupported(DefaultSource) || !IsSupported(DefaultTarget) {
		t.Fatalf("defaults must be supported")
	}
}

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		got := Resolve("ko")
		if got.Name != "한국어" || got.Flag == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("base fallback", func(t *testing.T) {
		got := Resolve("fr_CA")
		if got.Code != "fr" || got.Name != "Français" {
			t.Fatalf("unexpected fallback result: %#v", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		got := Resolve("zz-ZZ")
		if got.Name != "zz-ZZ" || got.Flag != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}
