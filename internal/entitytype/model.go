package entitytype

import (
	"time"

	"rng/internal/config"
)

const (
	SourceStatic  = "static"
	SourceMongoDB = "mongodb"
)

// Definition describes an entity type and its named link templates.
type Definition struct {
	ID            string            `json:"id" bson:"_id"`
	Label         string            `json:"label" bson:"label"`
	LinkTemplates map[string]string `json:"link_templates" bson:"link_templates"`
	Source        string            `json:"source" bson:"-"`
	CreatedAt     time.Time         `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty" bson:"updated_at"`
}

// LinkTemplate returns the path pattern registered under name, or "".
func (d *Definition) LinkTemplate(name string) string {
	if d == nil {
		return ""
	}
	return d.LinkTemplates[name]
}

type CreateRequest struct {
	ID            string            `json:"id" binding:"required"`
	Label         string            `json:"label"`
	LinkTemplates map[string]string `json:"link_templates"`
}

type UpdateRequest struct {
	Label         *string           `json:"label"`
	LinkTemplates map[string]string `json:"link_templates"`
}

func fromConfig(cfg config.EntityTypeConfig) Definition {
	return Definition{
		ID:            cfg.ID,
		Label:         cfg.Label,
		LinkTemplates: copyTemplates(cfg.LinkTemplates),
		Source:        SourceStatic,
	}
}

func copyDefinition(d *Definition) *Definition {
	out := *d
	out.LinkTemplates = copyTemplates(d.LinkTemplates)
	return &out
}

func copyTemplates(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
