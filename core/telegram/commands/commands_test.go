package commands

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"/menu":               "/menu",
		"  /Add  ":            "/add",
		"/finish_tags@my_bot": "/finish_tags",
		"/start payload here": "/start",
		"/":                   "",
		"menu":                "",
		"":                    "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
