package trustforge

import (
	"bytes"
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/controls"
	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/index"
	"github.com/alnah/go-trustforge/internal/risk"
	"github.com/alnah/go-trustforge/internal/tabular"
)

// ExportFormat is the output format of an index, control map or risk
// register.
type ExportFormat = tabular.Format

const (
	ExportCSV  = tabular.FormatCSV
	ExportHTML = tabular.FormatHTML
)

func (p *Pipeline) aggregator() *index.Aggregator {
	return &index.Aggregator{
		Include: p.cfg.include,
		Exclude: p.cfg.exclude,
		Workers: p.cfg.workers,
		Logger:  p.logger,
	}
}

// IndexRecords yields one record per source under root, lazily and in
// path order. Files that cannot be indexed are yielded as *SkipError.
func (p *Pipeline) IndexRecords(ctx context.Context, root string) iter.Seq2[IndexRecord, error] {
	return p.aggregator().Records(ctx, root)
}

// BuildIndex parses every source under root in parallel. Unparseable files
// are logged and listed in the result; only an unusable root fails.
func (p *Pipeline) BuildIndex(ctx context.Context, root string) (*IndexResult, error) {
	return p.aggregator().Collect(ctx, root)
}

// WriteIndex builds the index of root and writes it to out as CSV.
func (p *Pipeline) WriteIndex(ctx context.Context, root, out string) (*IndexResult, error) {
	res, err := p.BuildIndex(ctx, root)
	if err != nil {
		return nil, err
	}
	data, err := index.Table(res.Records).CSV()
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(out, data, 0o644); err != nil {
		return nil, err
	}
	p.logger.Info("wrote index",
		zap.String("output", out),
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// ControlMap validates a control catalog. With an empty catalogPath the
// framework is looked up among the registered catalogs; otherwise the file
// is loaded, validated and registered under framework, so later risk
// exports can check references against it.
func (p *Pipeline) ControlMap(framework, catalogPath string) (*ControlExport, error) {
	var (
		cf  *controls.CatalogFile
		err error
	)
	if catalogPath != "" {
		cf, err = controls.LoadCatalog(catalogPath, framework)
	} else {
		var c *controls.Catalog
		c, err = p.registry.Lookup(framework)
		if err == nil {
			cf = controls.FromCatalog(c)
		}
	}
	if err != nil {
		return nil, err
	}

	exp, err := controls.Validate(cf, p.policy(), p.logger)
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		p.registry.Register(exp.Catalog)
	}
	return exp, nil
}

// WriteControlMap writes the valid entries of exp to out.
func (p *Pipeline) WriteControlMap(exp *ControlExport, out string, format ExportFormat) error {
	var buf bytes.Buffer
	switch format {
	case ExportHTML:
		if err := controls.WriteHTML(&buf, exp.Catalog, p.report()); err != nil {
			return err
		}
	case ExportCSV:
		if err := controls.WriteCSV(&buf, exp.Catalog.Entries); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err := fileutil.WriteFileAtomic(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	p.logger.Info("wrote control map",
		zap.String("framework", exp.Catalog.Framework),
		zap.String("output", out),
		zap.Int("entries", len(exp.Catalog.Entries)),
		zap.Int("skipped", len(exp.Skipped)))
	return nil
}

// RiskRegister loads and validates a risk register. When framework names
// a registered catalog, control references outside it are logged.
func (p *Pipeline) RiskRegister(path, framework string) (*RiskExport, error) {
	reg, err := risk.Load(path)
	if err != nil {
		return nil, err
	}
	x := &risk.Exporter{Policy: p.policy(), Logger: p.logger}
	if framework != "" {
		c, err := p.registry.Lookup(framework)
		if err != nil {
			return nil, err
		}
		x.KnownControls = c.IDs()
	}
	return x.Export(reg)
}

// WriteRiskRegister writes the valid entries of exp to out.
func (p *Pipeline) WriteRiskRegister(exp *RiskExport, out string, format ExportFormat) error {
	var buf bytes.Buffer
	switch format {
	case ExportHTML:
		if err := risk.WriteHTML(&buf, exp.Entries, p.report()); err != nil {
			return err
		}
	case ExportCSV:
		if err := risk.WriteCSV(&buf, exp.Entries); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err := fileutil.WriteFileAtomic(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	p.logger.Info("wrote risk register",
		zap.String("output", out),
		zap.Int("entries", len(exp.Entries)),
		zap.Int("skipped", len(exp.Skipped)))
	return nil
}
