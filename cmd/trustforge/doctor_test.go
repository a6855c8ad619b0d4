package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-trustforge/internal/config"
)

// Notes:
// - binaries point at paths that do not exist so results do not depend on
//   what the host has installed
// ---------------------------------------------------------------------------

func doctorConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Sources.Dir = t.TempDir()
	cfg.PDF.XeLaTeX = filepath.Join(t.TempDir(), "no-xelatex")
	cfg.PDF.ChromeBin = filepath.Join(t.TempDir(), "no-chrome")
	cfg.PDF.NoSandbox = true
	return cfg
}

// ---------------------------------------------------------------------------
// TestRunDoctor - Error and warning classification
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		modify     func(cfg *config.Config)
		wantStatus string
		wantError  string
		wantWarn   string
	}{
		{
			name:       "selected xelatex missing",
			modify:     func(cfg *config.Config) {},
			wantStatus: statusErrors,
			wantError:  "not found on PATH",
		},
		{
			name:       "xelatex missing with chrome engine",
			modify:     func(cfg *config.Config) { cfg.PDF.Engine = config.EngineChrome },
			wantStatus: statusWarnings,
			wantWarn:   "not found on PATH",
		},
		{
			name: "unknown theme",
			modify: func(cfg *config.Config) {
				cfg.PDF.Engine = config.EngineChrome
				cfg.Theme.Name = "no-such-theme"
			},
			wantStatus: statusErrors,
			wantError:  "no-such-theme",
		},
		{
			name: "missing sources dir",
			modify: func(cfg *config.Config) {
				cfg.PDF.Engine = config.EngineChrome
				cfg.Sources.Dir = filepath.Join(cfg.Sources.Dir, "missing")
			},
			wantStatus: statusWarnings,
			wantWarn:   "sources directory",
		},
		{
			name: "missing asset path",
			modify: func(cfg *config.Config) {
				cfg.Assets.BasePath = filepath.Join(cfg.Sources.Dir, "missing")
			},
			wantStatus: statusErrors,
			wantError:  "asset path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := doctorConfig(t)
			tt.modify(cfg)
			env, _, _ := testEnv(nil)
			result := runDoctor(context.Background(), cfg, env)

			if result.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (errors %v, warnings %v)", result.Status, tt.wantStatus, result.Errors, result.Warnings)
			}
			if tt.wantError != "" && !containsAny(result.Errors, tt.wantError) {
				t.Errorf("Errors = %v, want one containing %q", result.Errors, tt.wantError)
			}
			if tt.wantWarn != "" && !containsAny(result.Warnings, tt.wantWarn) {
				t.Errorf("Warnings = %v, want one containing %q", result.Warnings, tt.wantWarn)
			}
			if !result.System.TempWritable {
				t.Error("TempWritable = false")
			}
		})
	}
}

func containsAny(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestRunDoctor_CIDetection(t *testing.T) {
	t.Parallel()

	cfg := doctorConfig(t)
	cfg.PDF.Engine = config.EngineChrome
	cfg.PDF.NoSandbox = false

	env, _, _ := testEnv(map[string]string{"GITHUB_ACTIONS": "true"})
	result := runDoctor(context.Background(), cfg, env)
	if !result.Env.CI {
		t.Error("CI not detected")
	}
	if !containsAny(result.Warnings, "ROD_NO_SANDBOX") {
		t.Errorf("Warnings = %v, want sandbox warning", result.Warnings)
	}

	env, _, _ = testEnv(map[string]string{"GITHUB_ACTIONS": "true", "ROD_NO_SANDBOX": "1"})
	result = runDoctor(context.Background(), cfg, env)
	if !result.Env.NoSandbox || containsAny(result.Warnings, "ROD_NO_SANDBOX") {
		t.Errorf("NoSandbox = %v, warnings = %v", result.Env.NoSandbox, result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestDoctorCmd - Output formats and exit behaviour
// ---------------------------------------------------------------------------

func TestDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfgPath := writeConfig(t, root, filepath.Join(root, "out"),
		"pdf:",
		"  engine: xelatex",
		"  xelatex: "+filepath.Join(root, "no-xelatex"),
	)
	env, stdout, _ := testEnv(nil)

	err := runDoctorCmd(context.Background(), []string{"--json", "-c", cfgPath}, env)
	if !errors.Is(err, errDoctor) {
		t.Fatalf("error = %v, want errDoctor", err)
	}
	if exitCodeFor(err) != ExitGeneral {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitGeneral)
	}

	var got doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if got.Status != statusErrors || got.Engine != "xelatex" || got.XeLaTeX.Found {
		t.Errorf("result = %+v", got)
	}
	if len(got.Themes.Available) == 0 {
		t.Error("no themes reported")
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *doctorResult
		want   []string
	}{
		{
			name: "ready",
			result: &doctorResult{
				Status:  statusReady,
				Engine:  "xelatex",
				XeLaTeX: toolInfo{Found: true, Path: "/usr/bin/xelatex", Version: "XeTeX 3.14"},
				Themes:  themeInfo{Selected: "neutral", Available: []string{"cnciso", "neutral"}},
				System:  systemInfo{TempWritable: true},
			},
			want: []string{"[OK] xelatex: /usr/bin/xelatex (XeTeX 3.14)", "Selected: neutral", "cnciso, neutral", "Status: Ready"},
		},
		{
			name: "errors",
			result: &doctorResult{
				Status: statusErrors,
				Engine: "xelatex",
				Errors: []string{"xelatex not found on PATH"},
			},
			want: []string{"[ERROR] xelatex: not found", "[WARN] chrome: not found", "Errors:", "Status: Not ready"},
		},
		{
			name: "warnings",
			result: &doctorResult{
				Status:   statusWarnings,
				Engine:   "chrome",
				Warnings: []string{"sources directory policies does not exist"},
				Env:      envInfo{Container: true, ContainerHint: "/.dockerenv"},
			},
			want: []string{"Container: detected (/.dockerenv)", "Warnings:", "Status: Ready with warnings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
