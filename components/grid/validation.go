package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DashboardValidator checks dashboard payloads before they are persisted.
type DashboardValidator interface {
	Validate(dashboard Dashboard) error
}

const dashboardSchemaName = "grid.dashboard.json"

// dashboardSchema constrains the persisted document.
var dashboardSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "data"},
	"properties": map[string]any{
		"id": map[string]any{"type": "string", "minLength": 1},
		"data": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"layout": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"i", "x", "y", "w", "h"},
						"properties": map[string]any{
							"i": map[string]any{"type": "string", "minLength": 1},
							"x": map[string]any{"type": "integer", "minimum": 0, "maximum": GridColumns - 1},
							"y": map[string]any{"type": "integer", "minimum": 0},
							"w": map[string]any{"type": "integer", "minimum": 1, "maximum": GridColumns},
							"h": map[string]any{"type": "integer", "minimum": 1},
						},
					},
				},
				"widgets": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"id"},
						"properties": map[string]any{
							"id": map[string]any{"type": "string", "minLength": 1},
						},
					},
				},
			},
		},
	},
}

// SchemaValidator validates dashboards against the JSON schema above.
type SchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewSchemaValidator builds a validator backed by jsonschema v5.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate implements DashboardValidator.
func (v *SchemaValidator) Validate(dashboard Dashboard) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("grid: marshal dashboard %s: %w", dashboard.ID, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("grid: normalize dashboard %s: %w", dashboard.ID, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDashboard, err)
	}
	return nil
}

func (v *SchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(dashboardSchema)
		if err != nil {
			v.err = fmt.Errorf("grid: marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(dashboardSchemaName, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("grid: load schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(dashboardSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("grid: compile schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}
