package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func setVars(t *testing.T, version, commit, date string) {
	t.Helper()
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })
	Version, Commit, Date = version, commit, date
}

func TestTemplateIncludesBuildInfo(t *testing.T) {
	setVars(t, "v0.3.0", "abc1234", "2025-06-01T10:00:00Z")

	tmpl := Template()
	for _, want := range []string{"{{.Name}} version v0.3.0", "commit: abc1234", "built: 2025-06-01T10:00:00Z"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1e7d"},
			{Key: "vcs.time", Value: "2025-07-02T08:00:00Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{"unset", Info{"dev", "none", "unknown"}, Info{"v0.4.1", "3f2a9c1e7d", "2025-07-02T08:00:00Z"}},
		{"ldflags win", Info{"v1.0.0", "abc", "2025-01-01"}, Info{"v1.0.0", "abc", "2025-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fill(tt.in, bi); got != tt.want {
				t.Errorf("fill() = %+v, want %+v", got, tt.want)
			}
		})
	}

	devel := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if got := fill(Info{"dev", "none", "unknown"}, devel); got.Version != "dev" {
		t.Errorf("(devel) main module should keep %q, got %q", "dev", got.Version)
	}
}

func TestShort(t *testing.T) {
	if got := (Info{Version: "v1.2.0", Commit: "3f2a9c1e7d"}).Short(); got != "v1.2.0 (3f2a9c1)" {
		t.Errorf("Short() = %q", got)
	}
	if got := (Info{Version: "dev", Commit: "none"}).Short(); got != "dev (none)" {
		t.Errorf("Short() = %q", got)
	}
}
