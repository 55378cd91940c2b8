package version

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if !strings.Contains(info.String(), "Version: "+Version) {
		t.Errorf("String() missing version: %q", info.String())
	}
}

func TestInfoJSON(t *testing.T) {
	out, err := GetVersionInfo().JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var decoded Info
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("JSON() produced invalid JSON: %v", err)
	}
	if decoded.Revision != Revision {
		t.Errorf("Revision = %q, want %q", decoded.Revision, Revision)
	}
}
