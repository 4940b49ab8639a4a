package logger

import "testing"

func TestSanitizeKVsRedactsSalary(t *testing.T) {
	got := sanitizeKVs([]interface{}{"employee_id", int64(7), "salary", 1200, "company", "Acme"})
	if len(got) != 6 {
		t.Fatalf("unexpected length: got=%d want=6", len(got))
	}
	if got[1] != int64(7) {
		t.Fatalf("unexpected employee_id: got=%v", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("salary not redacted: got=%v", got[3])
	}
	if got[5] != "Acme" {
		t.Fatalf("unexpected company: got=%v", got[5])
	}
}

func TestSanitizeKVsHashesNames(t *testing.T) {
	got := sanitizeKVs([]interface{}{"employee_name", "Ivan"})
	s, ok := got[1].(string)
	if !ok || len(s) != len("hash:")+12 || s[:5] != "hash:" {
		t.Fatalf("unexpected hashed value: got=%v", got[1])
	}
	again := sanitizeKVs([]interface{}{"employee_name", "Ivan"})
	if again[1] != got[1] {
		t.Fatalf("hash not stable: got=%v want=%v", again[1], got[1])
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	got := sanitizeKVs([]interface{}{"error", "boom", "orphan"})
	if len(got) != 3 || got[2] != "orphan" {
		t.Fatalf("unexpected output: %v", got)
	}
}

func TestNewTestModeIsSilent(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("store", "memory").Info("ignored", "salary", 1)
	log.Sync()
}
