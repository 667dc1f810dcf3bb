// Package checklist derives checklist completion from proposal data and
// computes the minimal patch needed to bring stored status up to date.
package checklist

import (
	"log/slog"
	"strings"
	"time"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Predicate decides whether a system check passes for a proposal
type Predicate func(p *models.Proposal) bool

// builtins are the system checks known without configuration
var builtins = map[types.ItemID]Predicate{
	models.CheckContractValue: func(p *models.Proposal) bool {
		return p.ContractValue != nil && *p.ContractValue > 0
	},
	models.CheckDueDate: func(p *models.Proposal) bool {
		return p.DueDate != nil
	},
	models.CheckNameSolicitation: func(p *models.Proposal) bool {
		return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.SolicitationNumber) != ""
	},
	models.CheckAgency: func(p *models.Proposal) bool {
		return strings.TrimSpace(p.Agency) != ""
	},
	models.CheckSolicitationNumber: func(p *models.Proposal) bool {
		return strings.TrimSpace(p.SolicitationNumber) != ""
	},
}

// Evaluate runs the built-in predicate for itemID. Unknown ids evaluate to
// false so an unrecognised check is never marked complete.
func Evaluate(itemID types.ItemID, p *models.Proposal) bool {
	if p == nil {
		return false
	}
	pred, ok := builtins[itemID]
	if !ok {
		return false
	}
	return pred(p)
}

// Known reports whether itemID has a built-in predicate
func Known(itemID types.ItemID) bool {
	_, ok := builtins[itemID]
	return ok
}

// Validator evaluates system checks, consulting CEL expressions for items
// that carry one.
type Validator struct {
	cel    *CELEvaluator
	clock  func() time.Time
	logger *slog.Logger
}

// ValidatorOption configures a Validator
type ValidatorOption func(*Validator)

// WithCEL enables expression-backed checks
func WithCEL(e *CELEvaluator) ValidatorOption {
	return func(v *Validator) {
		v.cel = e
	}
}

// WithClock overrides the time source exposed to expressions as `now`
func WithClock(clock func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.clock = clock
	}
}

// WithValidatorLogger sets the logger used for expression failures
func WithValidatorLogger(l *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = l
	}
}

// NewValidator creates a Validator
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{clock: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Check evaluates a single checklist item. Expression items take precedence
// over built-ins; evaluation errors count as not passing.
func (v *Validator) Check(item models.ChecklistItem, p *models.Proposal) bool {
	if p == nil {
		return false
	}
	if item.Expression != "" {
		if v == nil || v.cel == nil {
			return false
		}
		ok, err := v.cel.Eval(item.Expression, p, v.clock())
		if err != nil {
			v.logger.Warn("system check expression failed",
				"item_id", item.ID,
				"proposal_id", p.ID,
				"error", err)
			return false
		}
		return ok
	}
	return Evaluate(item.ID, p)
}
