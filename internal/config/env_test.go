package config

import (
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	t.Setenv("CHESSBOARD_TEST_ADDR", "")
	if got := Getenv("CHESSBOARD_TEST_ADDR", ":8080"); got != ":8080" {
		t.Fatalf("expected default, got %q", got)
	}
	t.Setenv("CHESSBOARD_TEST_ADDR", ":9000")
	if got := Getenv("CHESSBOARD_TEST_ADDR", ":8080"); got != ":9000" {
		t.Fatalf("expected env value, got %q", got)
	}
}

func TestGetenb(t *testing.T) {
	cases := map[string]bool{"1": true, "Yes": true, " on ": true, "0": false, "off": false, "maybe": true}
	for v, want := range cases {
		t.Setenv("CHESSBOARD_TEST_DEBUG", v)
		if got := Getenb("CHESSBOARD_TEST_DEBUG", true); got != want {
			t.Fatalf("%q: expected %v, got %v", v, want, got)
		}
	}
}

func TestGetdur(t *testing.T) {
	t.Setenv("CHESSBOARD_TEST_IDLE", "90m")
	if got := Getdur("CHESSBOARD_TEST_IDLE", time.Hour); got != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", got)
	}
	for _, bad := range []string{"soon", "-1h", "0s"} {
		t.Setenv("CHESSBOARD_TEST_IDLE", bad)
		if got := Getdur("CHESSBOARD_TEST_IDLE", time.Hour); got != time.Hour {
			t.Fatalf("%q: expected default, got %v", bad, got)
		}
	}
}
