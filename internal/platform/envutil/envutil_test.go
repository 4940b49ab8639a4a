package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "abc")
	if got := Int("ENVUTIL_TEST_INT", 42); got != 42 {
		t.Fatalf("unexpected value: got=%d want=42", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", " 17 ")
	if got := Int("ENVUTIL_TEST_INT", 42); got != 17 {
		t.Fatalf("unexpected value: got=%d want=17", got)
	}
}

func TestBool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"yes", false, true},
		{"OFF", true, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_BOOL", tc.raw)
		if got := Bool("ENVUTIL_TEST_BOOL", tc.def); got != tc.want {
			t.Fatalf("Bool(%q, %v): got=%v want=%v", tc.raw, tc.def, got, tc.want)
		}
	}
}

func TestSecondsAndList(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_SECONDS", "3")
	if got := Seconds("ENVUTIL_TEST_SECONDS", time.Minute); got != 3*time.Second {
		t.Fatalf("unexpected duration: got=%s", got)
	}
	t.Setenv("ENVUTIL_TEST_LIST", "a, ,b,")
	if got := List("ENVUTIL_TEST_LIST", nil); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected list: got=%v", got)
	}
	if got := String("ENVUTIL_TEST_UNSET_VALUE", "fallback", nil); got != "fallback" {
		t.Fatalf("unexpected string: got=%q", got)
	}
}
