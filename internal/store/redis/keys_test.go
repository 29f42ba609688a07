package redis

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		root        string
		wantRun     string
		wantObjects string
	}{
		{root: "alice", wantRun: "d2f:run:alice", wantObjects: "d2f:objects:alice"},
		{root: "/alice/bookmarks/", wantRun: "d2f:run:alice/bookmarks", wantObjects: "d2f:objects:alice/bookmarks"},
	}

	for _, tt := range tests {
		if got := RunKey(tt.root); got != tt.wantRun {
			t.Errorf("RunKey(%q) = %q, want %q", tt.root, got, tt.wantRun)
		}
		if got := ObjectsKey(tt.root); got != tt.wantObjects {
			t.Errorf("ObjectsKey(%q) = %q, want %q", tt.root, got, tt.wantObjects)
		}
	}
}
