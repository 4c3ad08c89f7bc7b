package tree

import "testing"

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus("  Published ")
	if !ok || status != StatusPublished {
		t.Fatalf("ParseStatus: got %q, %v", status, ok)
	}
	if _, ok := ParseStatus("rendering"); ok {
		t.Fatal("unknown status should not parse")
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("empty status should not parse")
	}
}

func TestCanAdvanceLinearMachine(t *testing.T) {
	if !CanAdvance(StatusPending, StatusAccepted) {
		t.Fatal("pending -> accepted should be legal")
	}
	if CanAdvance(StatusPending, StatusPublished) {
		t.Fatal("skipping phases should be illegal")
	}
	if CanAdvance(StatusPublished, StatusValidated) {
		t.Fatal("moving backwards should be illegal")
	}
	if !CanAdvance(StatusValidated, StatusFailed) {
		t.Fatal("any live status may fail")
	}
	if CanAdvance(StatusFailed, StatusPublished) {
		t.Fatal("failed is terminal")
	}
	if CanAdvance(StatusFinalized, StatusFailed) {
		t.Fatal("finalized is terminal")
	}
}

func TestTaskAdvanceAndFail(t *testing.T) {
	task := &Task{Status: StatusPending}
	if !task.Advance(StatusAccepted) || task.Status != StatusAccepted {
		t.Fatalf("advance to accepted failed: %v", task.Status)
	}
	if task.Advance(StatusPublished) {
		t.Fatal("advance must refuse to skip validated")
	}
	task.SetFailed("source file missing")
	if task.Status != StatusFailed || task.ErrorMessage == "" {
		t.Fatalf("SetFailed: %+v", task)
	}
	if task.Advance(StatusValidated) {
		t.Fatal("failed task must not advance")
	}
}
