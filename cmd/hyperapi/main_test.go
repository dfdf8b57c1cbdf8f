package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestScanConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"people", "list"}, "hyperapi.yaml"},
		{"long flag", []string{"--config", "other.yaml", "people", "list"}, "other.yaml"},
		{"short flag after command", []string{"people", "list", "-c", "x.yaml"}, "x.yaml"},
		{"unknown flags ignored", []string{"people", "create", "--name", "Grace", "--config=y.yaml"}, "y.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanConfig(tt.args)
			if err != nil {
				t.Fatalf("scanConfig: %v", err)
			}
			if got != tt.want {
				t.Errorf("scanConfig = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoutesCommand(t *testing.T) {
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"routes", "-O", "json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("routes: %v", err)
	}

	got := out.String()
	for _, want := range []string{`"/p/blog-postings"`, `"blog-postings/retrieve"`, `"nested"`} {
		if !strings.Contains(got, want) {
			t.Errorf("routes output missing %s", want)
		}
	}
}

func TestDocsCommand(t *testing.T) {
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"docs", "--server", "https://api.example.com"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("docs: %v", err)
	}
	if !strings.Contains(out.String(), `"openapi"`) || !strings.Contains(out.String(), "https://api.example.com") {
		t.Errorf("docs output = %.200s", out.String())
	}
}

func TestVersionOutput(t *testing.T) {
	for _, args := range [][]string{{"version"}, {"--version"}} {
		out := &bytes.Buffer{}
		rootCmd.SetOut(out)
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if got := out.String(); got != buildInfo() {
			t.Errorf("%v output = %q, want %q", args, got, buildInfo())
		}
	}
}

func TestRootDescribesFormats(t *testing.T) {
	for _, format := range []string{"Hydra", "HAL", "JSON:API"} {
		if !strings.Contains(rootCmd.Long, format) {
			t.Errorf("root help does not mention %s", format)
		}
	}
}
