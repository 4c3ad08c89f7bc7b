package pipeline

import (
	"fmt"
	"strings"

	"kiln/internal/services"
)

// SettingType enumerates the value types a plugin setting may declare.
type SettingType string

const (
	TypeString SettingType = "string"
	TypeInt    SettingType = "int"
	TypeFloat  SettingType = "float"
	TypeBool   SettingType = "bool"
	TypeList   SettingType = "list"
)

// SettingSpec declares one entry of a plugin's settings schema.
type SettingSpec struct {
	Name        string
	Type        SettingType
	Default     any
	Required    bool
	Description string

	// Validate rejects values beyond the basic type check. Optional.
	Validate func(value any) error
}

// Schema is the ordered settings schema of a plugin.
type Schema []SettingSpec

// Spec looks up a schema entry by name.
func (s Schema) Spec(name string) (SettingSpec, bool) {
	for _, spec := range s {
		if spec.Name == name {
			return spec, true
		}
	}
	return SettingSpec{}, false
}

// Settings holds the resolved setting values handed to plugin phases.
type Settings map[string]any

// Resolve merges configured overrides over schema defaults and checks
// required settings and declared validators. Unknown override keys are
// rejected so configuration typos surface at load time.
func (s Schema) Resolve(overrides map[string]any) (Settings, error) {
	resolved := make(Settings, len(s))
	for _, spec := range s {
		if spec.Default != nil {
			resolved[spec.Name] = spec.Default
		}
	}
	for key, value := range overrides {
		spec, ok := s.Spec(key)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "settings", "resolve", fmt.Sprintf("unknown setting %q", key), nil)
		}
		if err := spec.check(value); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "settings", "resolve", fmt.Sprintf("setting %q", key), err)
		}
		resolved[key] = value
	}
	for _, spec := range s {
		if !spec.Required {
			continue
		}
		value, ok := resolved[spec.Name]
		if !ok || value == nil || isEmptyString(value) {
			return nil, services.Wrap(services.ErrConfiguration, "settings", "resolve", fmt.Sprintf("required setting %q missing", spec.Name), nil)
		}
	}
	return resolved, nil
}

func (spec SettingSpec) check(value any) error {
	switch spec.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case TypeInt:
		switch value.(type) {
		case int, int64:
		default:
			return fmt.Errorf("expected int, got %T", value)
		}
	case TypeFloat:
		switch value.(type) {
		case float64, int, int64:
		default:
			return fmt.Errorf("expected float, got %T", value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
	case TypeList:
		switch value.(type) {
		case []any, []string:
		default:
			return fmt.Errorf("expected list, got %T", value)
		}
	}
	if spec.Validate != nil {
		return spec.Validate(value)
	}
	return nil
}

func isEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

// String reads a setting as a string, returning "" when absent.
func (s Settings) String(name string) string {
	if v, ok := s[name]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// Int reads a setting as an int, returning 0 when absent.
func (s Settings) Int(name string) int {
	switch v := s[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

// Bool reads a setting as a bool, returning false when absent.
func (s Settings) Bool(name string) bool {
	v, _ := s[name].(bool)
	return v
}

// StringSlice reads a setting as a list of strings, tolerating []any values
// produced by TOML decoding.
func (s Settings) StringSlice(name string) []string {
	switch v := s[name].(type) {
	case []string:
		cp := make([]string, len(v))
		copy(cp, v)
		return cp
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if str, ok := entry.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
