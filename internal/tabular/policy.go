package tabular

import "go.uber.org/zap"

// Policy decides what happens to a record that fails validation.
type Policy struct {
	// Strict aborts on the first invalid record. Otherwise invalid records
	// are logged and skipped.
	Strict bool
}

// Reject applies the policy to a record error. It returns err when the
// policy is strict, and nil after logging when it is lenient.
func (p Policy) Reject(logger *zap.Logger, err error) error {
	if p.Strict {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := []zap.Field{zap.Error(err)}
	if rerr, ok := err.(*InvalidRecordError); ok {
		fields = []zap.Field{
			zap.String("source", rerr.Source),
			zap.Int("index", rerr.Index),
			zap.String("id", rerr.ID),
			zap.String("field", rerr.Field),
			zap.String("reason", rerr.Reason),
		}
	}
	logger.Warn("record skipped", fields...)
	return nil
}
