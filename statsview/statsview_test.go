package statsview

import "testing"

func TestURL(t *testing.T) {
	if got, want := URL("localhost:12600"), "http://localhost:12600/debug/statsview"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStartRejectsBadAddress(t *testing.T) {
	for _, addr := range []string{"", "localhost", "12600"} {
		if s, err := Start(addr); err == nil {
			s.Stop()
			t.Errorf("%q: expected an error", addr)
		}
	}
}
