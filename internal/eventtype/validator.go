package eventtype

import (
	"fmt"

	"rng/internal/config"
)

const maxLabelLength = 255

func ValidateCreate(req CreateRequest) error {
	if req.EntityType == "" {
		return fmt.Errorf("entity_type is required")
	}
	if !config.IsValidEntityType(req.EntityType) {
		return fmt.Errorf("invalid entity_type %q: must match ^[a-z][a-z0-9_]*$", req.EntityType)
	}
	if err := validateLabel(req.Label); err != nil {
		return err
	}
	return validateRegistrationTypes(req.RegistrationTypes)
}

func ValidateUpdate(req UpdateRequest) error {
	if req.Label != nil {
		if err := validateLabel(*req.Label); err != nil {
			return err
		}
	}
	return validateRegistrationTypes(req.RegistrationTypes)
}

func validateLabel(label string) error {
	if len(label) > maxLabelLength {
		return fmt.Errorf("label must be at most %d characters", maxLabelLength)
	}
	return nil
}

func validateRegistrationTypes(types []string) error {
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if !config.IsValidEntityType(t) {
			return fmt.Errorf("invalid registration type %q", t)
		}
		if seen[t] {
			return fmt.Errorf("duplicate registration type %q", t)
		}
		seen[t] = true
	}
	return nil
}
