package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateDefaultMatrix(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "generate", "--output", dir, "--workers", "4")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Generating datasets") {
		t.Fatalf("expected start banner, got:\n%s", out)
	}
	for _, rel := range []string{
		filepath.Join("mio", "spacecraft_1_mio.json"),
		filepath.Join("mio", "spacecraft_10_mio.json"),
		filepath.Join("sso", "spacecraft_100_sso.json"),
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
	}
	if strings.Count(out, "saved constellation") != 14 {
		t.Fatalf("expected 14 saved lines, got:\n%s", out)
	}
}

func TestGenerateWithConfigSkipsAndFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "matrix.yaml")
	doc := "families:\n  - name: MIO\n    inclination_deg: 53\nsizes: [1, 7, 10]\nwalker:\n  \"1\": [1, 1, 0]\n  \"10\": [10, 3, 0]\n"
	if err := os.WriteFile(cfgPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "generate", "--config", cfgPath, "--output", dir)
	if err == nil {
		t.Fatalf("expected failure for 10/3/0, got:\n%s", out)
	}
	if !strings.Contains(out, "skipping constellation size without walker configuration") {
		t.Fatalf("expected skip warning, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "mio", "spacecraft_1_mio.json")); err != nil {
		t.Fatalf("valid size not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "mio", "spacecraft_10_mio.json")); !os.IsNotExist(err) {
		t.Fatalf("failed size left a file: %v", err)
	}
}

func TestGenerateOnlySkipsExitsZero(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(cfgPath, []byte("sizes: [1, 3]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if out, err := runCLI(t, "generate", "--config", cfgPath, "--output", t.TempDir()); err != nil {
		t.Fatalf("skips alone must not fail: %v\n%s", err, out)
	}
}

func TestGenerateBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(cfgPath, []byte("bogus: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runCLI(t, "generate", "--config", cfgPath, "--output", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown config field")
	}
}

func TestGenerateMetricsFileAndCZML(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(t.TempDir(), "satplan.prom")
	cfgPath := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(cfgPath, []byte("sizes: [5]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "generate", "--config", cfgPath, "--output", dir, "--czml", "--metrics-file", metrics, "--log-format", "json")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"msg":"Generating datasets"`) {
		t.Fatalf("expected json logs, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "sso", "constellation_5_sso.czml")); err != nil {
		t.Fatalf("missing czml: %v", err)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{
		`satplan_constellations_total{family="MIO",status="written"} 1`,
		`satplan_satellites_generated_total{family="SSO"} 5`,
		`satplan_catalog_constellations 2`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("metrics missing %q:\n%s", want, data)
		}
	}
}

func TestGenerateOutputFromEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(cfgPath, []byte("sizes: [2]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SATPLAN_OUTPUT", dir)
	t.Setenv("SATPLAN_CONFIG", cfgPath)

	if out, err := runCLI(t, "generate"); err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "mio", "spacecraft_2_mio.json")); err != nil {
		t.Fatalf("env output dir not honoured: %v", err)
	}
}
