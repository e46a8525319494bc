package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestPrintVersion(t *testing.T) {
	info := buildInfo{App: app, Version: "v1.2.0", Go: "go1.24.5", Model: "gemini-2.5-flash"}

	var out bytes.Buffer
	if err := printVersion(&out, info, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := out.String(), "alumni-matcher version: v1.2.0 (go1.24.5, model gemini-2.5-flash)\n"; got != want {
		t.Fatalf("unexpected output %q, want %q", got, want)
	}

	out.Reset()
	if err := printVersion(&out, info, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded buildInfo
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if decoded != info {
		t.Fatalf("unexpected json %+v", decoded)
	}
}

func TestCurrentBuildUsesConfiguredModel(t *testing.T) {
	info := currentBuild()
	if info.App != app {
		t.Fatalf("unexpected app %q", info.App)
	}
	if info.Model != "gemini-2.5-flash" {
		t.Fatalf("expected default model, got %q", info.Model)
	}
	if info.Version == "" || info.Go == "" {
		t.Fatalf("version fields must be set: %+v", info)
	}
}
