package controls

import (
	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/tabular"
)

// Export is the validated content of a catalog.
type Export struct {
	Catalog *Catalog
	Skipped []error
}

// Validate checks every record of cf and returns the valid entries as a
// Catalog. Invalid records are handled by policy: a strict policy returns
// the first *tabular.InvalidRecordError, a lenient one logs and skips it.
// Unconventional control identifiers are logged, never rejected.
func Validate(cf *CatalogFile, policy tabular.Policy, logger *zap.Logger) (*Export, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &Export{Catalog: &Catalog{Name: cf.Name, Framework: cf.Framework, Source: cf.Source}}
	for _, raw := range cf.Records {
		e, err := cf.decode(raw)
		if err == nil {
			err = tabular.RecordError(cf.Source, raw.Index, e.ControlID, e.Validate())
		}
		if err != nil {
			if rerr := policy.Reject(logger, err); rerr != nil {
				return nil, rerr
			}
			out.Skipped = append(out.Skipped, err)
			continue
		}
		if !e.ConventionalID() {
			logger.Warn("unconventional control id",
				zap.String("source", cf.Source),
				zap.Int("index", raw.Index),
				zap.String("control_id", e.ControlID))
		}
		out.Catalog.Entries = append(out.Catalog.Entries, e)
	}
	return out, nil
}
