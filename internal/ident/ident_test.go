package ident

import (
	"strings"
	"testing"
)

func TestUUID_Prefix(t *testing.T) {
	id := UUID.New("slide")
	if !strings.HasPrefix(id, "slide-") || len(id) != len("slide-")+36 {
		t.Errorf("id = %q", id)
	}
	if UUID.New("slide") == id {
		t.Error("expected distinct ids")
	}
}

func TestUnique_SkipsTaken(t *testing.T) {
	taken := map[string]struct{}{"d-1": {}, "d-2": {}}
	id := Unique(Sequence(), "d", taken)
	if id != "d-3" {
		t.Errorf("id = %q, want d-3", id)
	}
	if _, ok := taken["d-3"]; !ok {
		t.Error("new id should be recorded as taken")
	}
}

func TestUnique_StuckSourceStillUnique(t *testing.T) {
	stuck := SourceFunc(func(prefix string) string { return prefix + "-same" })
	taken := map[string]struct{}{"d-same": {}}
	id := Unique(stuck, "d", taken)
	if id == "d-same" {
		t.Fatal("expected a suffixed id")
	}
	if !strings.HasPrefix(id, "d-same-") {
		t.Errorf("id = %q", id)
	}
}
