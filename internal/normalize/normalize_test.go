package normalize

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"RPI", "rpi"},
		{"consumer price indices", "consumer price index"},
		{"house prices 2021", "house price"},
		{"gender; pay-gap", "gender pay gap"},
		{"  whitespace   everywhere  ", "whitespace everywhere"},
		{"migrations", "migration"},
		{"", ""},
		{"2021 !!! 42", ""},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
