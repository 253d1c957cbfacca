package entitytype

import (
	"fmt"
	"strings"

	"rng/internal/config"
)

func ValidateCreate(req CreateRequest) error {
	if !config.IsValidEntityType(req.ID) {
		return fmt.Errorf("invalid id %q: must match ^[a-z][a-z0-9_]*$", req.ID)
	}
	return validateTemplates(req.LinkTemplates)
}

func ValidateUpdate(req UpdateRequest) error {
	return validateTemplates(req.LinkTemplates)
}

// validateTemplates requires absolute paths whose variables fill whole
// segments, e.g. /conference/{conference}.
func validateTemplates(templates map[string]string) error {
	for name, template := range templates {
		if name == "" {
			return fmt.Errorf("link template name is required")
		}
		if !strings.HasPrefix(template, "/") {
			return fmt.Errorf("link template %q must start with /", name)
		}
		for _, segment := range strings.Split(template, "/") {
			if !strings.ContainsAny(segment, "{}") {
				continue
			}
			if len(segment) < 3 || segment[0] != '{' || segment[len(segment)-1] != '}' ||
				!config.IsValidEntityType(segment[1:len(segment)-1]) {
				return fmt.Errorf("link template %q has an invalid path variable %q", name, segment)
			}
		}
	}
	return nil
}
