package query

import (
	"testing"
)

func int64p(v int64) *int64 { return &v }

func TestBuildFragmentOrder(t *testing.T) {
	t.Parallel()
	got := Build("tags:x", []string{"a", "b"}, int64p(7), []int64{101, 102})
	want := "tags:x tags:a,b group:7 custom_status_id:101 custom_status_id:102"
	if got != want {
		t.Fatalf("Build = %q, want %q", got, want)
	}
}

func TestBuildQuoting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{name: "plain", tag: "urgent", want: "tags:urgent"},
		{name: "space", tag: "needs review", want: `tags:"needs review"`},
		{name: "colon", tag: "a:b", want: `tags:"a:b"`},
		{name: "quote", tag: `say "hi"`, want: `tags:"say \"hi\""`},
		{name: "backslash", tag: `a\b`, want: `tags:"a\\b"`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Build("", []string{tt.tag}, nil, nil)
			if got != tt.want {
				t.Fatalf("Build = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOmitsAbsentFragments(t *testing.T) {
	t.Parallel()
	if got := Build("", nil, nil, nil); got != "" {
		t.Fatalf("empty criteria should build empty query, got %q", got)
	}
	if got := Build("  ", []string{" ", ""}, nil, nil); got != "" {
		t.Fatalf("blank criteria should build empty query, got %q", got)
	}
	if got := Build("status:open", nil, nil, nil); got != "status:open" {
		t.Fatalf("Build = %q, want %q", got, "status:open")
	}
}

func TestBuildNoEdgeWhitespace(t *testing.T) {
	t.Parallel()
	got := Build("", nil, int64p(3), []int64{9})
	if got != "group:3 custom_status_id:9" {
		t.Fatalf("Build = %q", got)
	}
}
