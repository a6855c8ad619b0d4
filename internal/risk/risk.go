// Package risk loads risk registers and exports them as CSV or HTML.
//
// A register is a YAML list of risks, or a mapping with a "risks" key:
//
//   - id: R-001
//     title: Public S3 bucket exposure
//     severity: High
//     likelihood: Possible
//     control_refs: [PR.AC-01, DE.AE-01]
//
// Severity, likelihood, status and treatment are matched case-insensitively
// against fixed vocabularies and stored in canonical casing.
package risk

import (
	"errors"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-trustforge/internal/dateutil"
)

// Vocabularies, lowest rank first.
var (
	Severities  = []string{"Low", "Medium", "High", "Critical"}
	Likelihoods = []string{"Unlikely", "Possible", "Likely"}
	Statuses    = []string{"Open", "Accepted", "Mitigating", "Resolved"}
	Treatments  = []string{"Accept", "Mitigate", "Transfer", "Avoid"}
)

// Defaults applied to absent optional fields.
const (
	DefaultOwner     = "CISO"
	DefaultStatus    = "Open"
	DefaultTreatment = "Mitigate"
)

// Entry is one validated risk.
type Entry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Likelihood  string   `json:"likelihood"`
	Owner       string   `json:"owner"`
	Status      string   `json:"status"`
	Treatment   string   `json:"treatment"`
	TargetDate  string   `json:"target_date"`
	ControlRefs []string `json:"control_refs"`
}

// Score is severity rank times likelihood rank, both counted from 1. It is
// 0 when either value is outside its vocabulary.
func (e Entry) Score() int {
	return rank(Severities, e.Severity) * rank(Likelihoods, e.Likelihood)
}

func rank(vocab []string, v string) int {
	return slices.Index(vocab, v) + 1
}

// canonical returns the vocabulary spelling of v, or v unchanged.
func canonical(vocab []string, v string) string {
	for _, w := range vocab {
		if strings.EqualFold(w, v) {
			return w
		}
	}
	return v
}

func (e *Entry) normalize() {
	e.Severity = canonical(Severities, e.Severity)
	e.Likelihood = canonical(Likelihoods, e.Likelihood)
	e.Status = canonical(Statuses, e.Status)
	e.Treatment = canonical(Treatments, e.Treatment)
	if e.Owner == "" {
		e.Owner = DefaultOwner
	}
	if e.Status == "" {
		e.Status = DefaultStatus
	}
	if e.Treatment == "" {
		e.Treatment = DefaultTreatment
	}
}

// Validate checks required fields, vocabularies and the target date.
func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Severity, validation.Required, in(Severities)),
		validation.Field(&e.Likelihood, validation.Required, in(Likelihoods)),
		validation.Field(&e.Status, in(Statuses)),
		validation.Field(&e.Treatment, in(Treatments)),
		validation.Field(&e.TargetDate, validation.By(isDate)),
	)
}

func in(vocab []string) validation.Rule {
	values := make([]any, len(vocab))
	for i, v := range vocab {
		values[i] = v
	}
	return validation.In(values...).Error("must be one of " + strings.Join(vocab, ", "))
}

var errDate = errors.New("must be a date in YYYY-MM-DD format")

func isDate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := dateutil.ParseDate(s); err != nil {
		return errDate
	}
	return nil
}
