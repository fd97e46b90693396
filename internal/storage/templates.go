package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
)

//go:embed templates.json
var templatesJSON []byte

// DefaultTemplates returns the example analyses shipped with the binary.
func DefaultTemplates() ([]models.Template, error) {
	var templates []models.Template
	if err := json.Unmarshal(templatesJSON, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode embedded templates: %w", err)
	}
	return templates, nil
}
