package ai

import (
	"context"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

// ConfigValidator checks evaluator settings against the live provider.
type ConfigValidator struct{}

// NewConfigValidator creates a new evaluator config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEvaluator creates the configured evaluator and pings it.
// An unselected provider has nothing to validate.
func (v *ConfigValidator) ValidateEvaluator(ctx context.Context, settings domain.EvaluatorSettings) error {
	evaluator, err := CreateAndValidateEvaluator(ctx, settings)
	if err != nil {
		return err
	}
	if evaluator != nil {
		return evaluator.Close()
	}
	return nil
}
