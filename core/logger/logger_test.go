package logger

import (
	"testing"
)

func TestBuildRID(t *testing.T) {
	got := BuildRID(42, 7, 9)
	if got != "42:7:9" {
		t.Fatalf("rid = %s, expected 42:7:9", got)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	ctx = WithHandler(ctx, "order.quantity")

	if rid := RIDFrom(ctx); rid != "rid-123" {
		t.Fatalf("rid = %s", rid)
	}
	if id := UpdateIDFrom(ctx); id != 42 {
		t.Fatalf("update_id = %d", id)
	}
	if id := UserIDFrom(ctx); id != 7 {
		t.Fatalf("user_id = %d", id)
	}
	if id := ChatIDFrom(ctx); id != 9 {
		t.Fatalf("chat_id = %d", id)
	}
	if h := HandlerFrom(ctx); h != "order.quantity" {
		t.Fatalf("handler = %s", h)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hello\x00world\nnext"
	got := SanitizeLimit(in, 64)
	if got != "helloworld\nnext" {
		t.Fatalf("sanitized = %q", got)
	}
	if got := SanitizeLimit("abcdef", 3); got != "abc" {
		t.Fatalf("limited = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("zero limit = %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 4)
	allowed := 0
	for i := 0; i < 8; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed = %d, expected 2 of 8", allowed)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		spec string
		num  int
		den  int
	}{
		{"1/50", 1, 50},
		{"25", 1, 25},
		{"0", 0, 0},
		{"garbage", 0, 0},
		{"", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.spec)
		if num != tc.num || den != tc.den {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, expected %d/%d", tc.spec, num, den, tc.num, tc.den)
		}
	}
}
