package risk

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/tabular"
)

// Export is the validated content of a register.
type Export struct {
	Entries []Entry
	Skipped []error
}

// Exporter validates registers.
type Exporter struct {
	Policy tabular.Policy

	// KnownControls, when set, is the control catalog risks refer to.
	// References outside it are logged, not rejected.
	KnownControls map[string]bool

	Logger *zap.Logger
}

// Export validates every record of reg in order. A duplicate id is an
// invalid record. Strict policies return the first invalid record.
func (x *Exporter) Export(reg *Register) (*Export, error) {
	logger := x.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	out := &Export{}
	seen := make(map[string]int)
	for _, raw := range reg.Records {
		e, err := Validate(reg.Source, raw)
		if err == nil {
			if first, dup := seen[e.ID]; dup {
				err = &tabular.InvalidRecordError{
					Source: reg.Source,
					Index:  raw.Index,
					ID:     e.ID,
					Field:  "id",
					Reason: fmt.Sprintf("duplicates record %d", first),
				}
			}
		}
		if err != nil {
			if rerr := x.Policy.Reject(logger, err); rerr != nil {
				return nil, rerr
			}
			out.Skipped = append(out.Skipped, err)
			continue
		}
		seen[e.ID] = raw.Index

		if x.KnownControls != nil {
			for _, ref := range e.ControlRefs {
				if !x.KnownControls[ref] {
					logger.Warn("unknown control ref",
						zap.String("source", reg.Source),
						zap.Int("index", raw.Index),
						zap.String("id", e.ID),
						zap.String("control_ref", ref))
				}
			}
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}
