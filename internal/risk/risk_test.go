package risk

// Notes:
// - The sample register mirrors the shape used by the CLI fixtures: two
//   valid risks followed by the invalid ones the lenient policy skips.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-trustforge/internal/controls"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/tabular"
)

const sampleRegister = `- id: R-001
  title: Public S3 bucket exposure
  description: "Misconfigured S3 bucket may expose sensitive customer data."
  severity: High
  likelihood: Possible
  owner: CISO
  status: Open
  treatment: Mitigate
  target_date: "2025-10-31"
  control_refs: ["PR.AC-01", "DE.AE-01"]

- id: R-002
  title: Model prompt injection
  description: "LLM-based agent may follow adversarial instructions."
  severity: high
  likelihood: LIKELY
  owner: Security Engineering
  status: Mitigating
  control_refs: ["ID.GV-01", "XX.YY-99"]

- id: R-003
  title: Unknown severity
  severity: Severe
  likelihood: Likely

- id: R-004
  title: Bad date
  severity: Low
  likelihood: Unlikely
  target_date: "31/10/2025"

- id: R-001
  title: Duplicate
  severity: Low
  likelihood: Unlikely
`

func decode(t *testing.T, data string) *Register {
	t.Helper()
	reg, err := Decode("risks.yaml", []byte(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return reg
}

// ---------------------------------------------------------------------------
// TestValidate - Single record rules
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fields    any
		want      Entry
		wantField string
	}{
		{
			name:   "defaults applied",
			fields: map[string]any{"id": "R-9", "title": "T", "severity": "critical", "likelihood": "unlikely"},
			want: Entry{
				ID: "R-9", Title: "T", Severity: "Critical", Likelihood: "Unlikely",
				Owner: "CISO", Status: "Open", Treatment: "Mitigate",
			},
		},
		{
			name:   "numeric id",
			fields: map[string]any{"id": uint64(7), "title": "T", "severity": "Low", "likelihood": "Likely", "control_refs": "PR.AC-01"},
			want: Entry{
				ID: "7", Title: "T", Severity: "Low", Likelihood: "Likely",
				Owner: "CISO", Status: "Open", Treatment: "Mitigate", ControlRefs: []string{"PR.AC-01"},
			},
		},
		{"missing id", map[string]any{"title": "T", "severity": "Low", "likelihood": "Likely"}, Entry{}, "id"},
		{"missing likelihood", map[string]any{"id": "R", "title": "T", "severity": "Low"}, Entry{}, "likelihood"},
		{"bad status", map[string]any{"id": "R", "title": "T", "severity": "Low", "likelihood": "Likely", "status": "Closed"}, Entry{}, "status"},
		{"bad treatment", map[string]any{"id": "R", "title": "T", "severity": "Low", "likelihood": "Likely", "treatment": "Ignore"}, Entry{}, "treatment"},
		{"bad date", map[string]any{"id": "R", "title": "T", "severity": "Low", "likelihood": "Likely", "target_date": "soon"}, Entry{}, "target_date"},
		{"title not scalar", map[string]any{"id": "R", "title": []any{"a"}}, Entry{}, "title"},
		{"not a mapping", "R-1", Entry{}, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Validate("risks.yaml", Raw{Index: 4, Fields: tt.fields})
			if tt.wantField != "" {
				var rerr *tabular.InvalidRecordError
				if !errors.As(err, &rerr) {
					t.Fatalf("Validate() error = %v, want *InvalidRecordError", err)
				}
				if rerr.Field != tt.wantField || rerr.Index != 4 {
					t.Errorf("error field = %q index = %d, want %q 4", rerr.Field, rerr.Index, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got.ID != tt.want.ID || got.Severity != tt.want.Severity || got.Likelihood != tt.want.Likelihood ||
				got.Owner != tt.want.Owner || got.Status != tt.want.Status || got.Treatment != tt.want.Treatment ||
				!slices.Equal(got.ControlRefs, tt.want.ControlRefs) {
				t.Errorf("Validate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEntry_Score(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity, likelihood string
		want                 int
	}{
		{"Low", "Unlikely", 1},
		{"High", "Possible", 6},
		{"Critical", "Likely", 12},
		{"Severe", "Likely", 0},
	}
	for _, tt := range tests {
		if got := (Entry{Severity: tt.severity, Likelihood: tt.likelihood}).Score(); got != tt.want {
			t.Errorf("Score(%s, %s) = %d, want %d", tt.severity, tt.likelihood, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestExporter_Export - Register policies
// ---------------------------------------------------------------------------

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	x := &Exporter{KnownControls: controls.NISTCSF20().IDs(), Logger: zap.New(core)}

	exp, err := x.Export(decode(t, sampleRegister))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var ids []string
	for _, e := range exp.Entries {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []string{"R-001", "R-002"}) {
		t.Errorf("entries = %q", ids)
	}
	if exp.Entries[1].Severity != "High" || exp.Entries[1].Likelihood != "Likely" || exp.Entries[1].Treatment != "Mitigate" {
		t.Errorf("R-002 = %+v", exp.Entries[1])
	}

	wantSkipped := []struct {
		index int
		field string
	}{{2, "severity"}, {3, "target_date"}, {4, "id"}}
	if len(exp.Skipped) != len(wantSkipped) {
		t.Fatalf("skipped = %v", exp.Skipped)
	}
	for i, w := range wantSkipped {
		var rerr *tabular.InvalidRecordError
		if !errors.As(exp.Skipped[i], &rerr) || rerr.Index != w.index || rerr.Field != w.field {
			t.Errorf("skipped[%d] = %v, want record %d field %s", i, exp.Skipped[i], w.index, w.field)
		}
	}

	if n := logs.FilterMessage("record skipped").Len(); n != 3 {
		t.Errorf("logged %d skips, want 3", n)
	}
	unknown := logs.FilterMessage("unknown control ref").All()
	if len(unknown) != 1 || unknown[0].ContextMap()["control_ref"] != "XX.YY-99" {
		t.Errorf("unknown ref warnings = %v", unknown)
	}
}

func TestExporter_Export_Strict(t *testing.T) {
	t.Parallel()

	_, err := (&Exporter{Policy: tabular.Policy{Strict: true}}).Export(decode(t, sampleRegister))
	var rerr *tabular.InvalidRecordError
	if !errors.As(err, &rerr) || rerr.Index != 2 || rerr.ID != "R-003" {
		t.Errorf("Export() error = %v, want record 2 (R-003)", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "risks.yaml")
	data := "risks:\n  - id: R-1\n    title: T\n    severity: Low\n    likelihood: Likely\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Source != path || len(reg.Records) != 1 {
		t.Errorf("Load() = %+v", reg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteCSV - Register columns
// ---------------------------------------------------------------------------

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	exp, err := (&Exporter{}).Export(decode(t, sampleRegister))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exp.Entries); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"id,title,description,severity,likelihood,owner,status,treatment,target_date,control_refs",
		"R-001,Public S3 bucket exposure,Misconfigured S3 bucket may expose sensitive customer data.,High,Possible,CISO,Open,Mitigate,2025-10-31,PR.AC-01;DE.AE-01",
		"R-002,Model prompt injection,LLM-based agent may follow adversarial instructions.,High,Likely,Security Engineering,Mitigating,Mitigate,,ID.GV-01;XX.YY-99",
	}
	if !slices.Equal(lines, want) {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

// ---------------------------------------------------------------------------
// TestWriteHTML - Register report
// ---------------------------------------------------------------------------

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	exp, err := (&Exporter{}).Export(decode(t, sampleRegister))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteHTML(&buf, exp.Entries, &render.Report{GeneratedAt: "2025-03-07"}); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Risk register</title>",
		"2 risks",
		`<td class="tf-severity-high">High</td>`,
		"<td>6</td>",
		"<td>9</td>",
		"<td>PR.AC-01, DE.AE-01</td>",
		"Generated 2025-03-07",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
