package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"leadreport/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFrom(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Analysis.StaffMinSamples != 10 || cfg.Analysis.RouteMinSamples != 8 || cfg.Schedule.Hour != 9 {
		t.Fatalf("unexpected defaults: %+v", cfg.Analysis)
	}
	if got := len(cfg.Analysis.Columns); got != len(model.AllFields) {
		t.Fatalf("columns=%d, want %d", got, len(model.AllFields))
	}
}

func TestLoadFrom_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `
[server]
port = 8081

[source]
path = "leads.xlsx"
sheet = "シート3"

[analysis]
staff_min_samples = 5

[[analysis.columns]]
field = "staff"
include = ["担当"]

[analysis.sheets]
staff = "担当者"

[schedule]
enabled = true
hour = 7
`)

	cfg, info, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 8081 || cfg.Source.Sheet != "シート3" || !cfg.Schedule.Enabled || cfg.Schedule.Hour != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	settings := cfg.AnalysisSettings()
	if settings.StaffMinSamples != 5 || settings.RouteMinSamples != 8 {
		t.Fatalf("thresholds: %+v", settings)
	}
	if len(settings.Columns) != len(model.AllFields) {
		t.Fatalf("columns=%d, want defaults merged", len(settings.Columns))
	}
	staff, ok := settings.Rule(model.FieldStaff)
	if !ok || len(staff.Include) != 1 || staff.Include[0] != "担当" {
		t.Fatalf("staff rule=%+v", staff)
	}
	route, _ := settings.Rule(model.FieldFrontRoute)
	if len(route.Exclude) != 1 || route.Exclude[0] != "集計シート" {
		t.Fatalf("front route rule should keep default: %+v", route)
	}
	if settings.Sheets.Staff != "担当者" || settings.Sheets.Route != "6_流入経路別" {
		t.Fatalf("sheets=%+v", settings.Sheets)
	}
	if len(settings.ConversionValues) != 2 {
		t.Fatalf("conversion values=%v", settings.ConversionValues)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "[source]\npath = \"a.xlsx\"\n")
	writeFile(t, filepath.Join(dir, ".env"), EnvSourceSheet+"=from-dotenv\n"+EnvOutputPath+"=dotenv.xlsx\n")

	t.Setenv(EnvSourcePath, "b.xlsx")
	t.Setenv(EnvOutputPath, "env.xlsx")
	// 注册清理后移除，让 .env 生效
	t.Setenv(EnvSourceSheet, "")
	_ = os.Unsetenv(EnvSourceSheet)

	cfg, _, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Source.Path != "b.xlsx" {
		t.Fatalf("source path=%q, want env override", cfg.Source.Path)
	}
	if cfg.Source.Sheet != "from-dotenv" {
		t.Fatalf("source sheet=%q, want .env value", cfg.Source.Sheet)
	}
	if cfg.Output.Path != "env.xlsx" {
		t.Fatalf("output path=%q, process env must win over .env", cfg.Output.Path)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"syntax":    "[server\nport = 1",
		"hour":      "[schedule]\nhour = 24\n",
		"field":     "[[analysis.columns]]\nfield = \"salary\"\ninclude = [\"x\"]\n",
		"include":   "[[analysis.columns]]\nfield = \"age\"\ninclude = []\n",
		"duplicate": "[[analysis.columns]]\nfield = \"age\"\ninclude = [\"a\"]\n[[analysis.columns]]\nfield = \"age\"\ninclude = [\"b\"]\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name+".toml")
		writeFile(t, path, content)
		if _, _, err := LoadFrom(path); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: err=%v, want ErrInvalidConfig", name, err)
		}
	}
}

func TestSaveConfig_WritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Source.Path = "leads.xlsx"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, info, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !info.PortSpecified || loaded.Source.Path != "leads.xlsx" {
		t.Fatalf("unexpected reload: %+v", loaded.Source)
	}
	if got := len(loaded.Analysis.Columns); got != len(model.AllFields) {
		t.Fatalf("columns=%d", got)
	}
}

func TestEnsureDataDirAt(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()

	dir, err := EnsureDataDirAt(cfg, base)
	if err != nil {
		t.Fatalf("EnsureDataDirAt: %v", err)
	}
	for _, sub := range []string{"uploads", "exports"} {
		if st, err := os.Stat(filepath.Join(dir, sub)); err != nil || !st.IsDir() {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}

	abs := filepath.Join(base, "abs")
	cfg.Data.DataDir = abs
	if got := ResolveDataDir(cfg, "/elsewhere"); got != abs {
		t.Fatalf("ResolveDataDir=%q", got)
	}
}
