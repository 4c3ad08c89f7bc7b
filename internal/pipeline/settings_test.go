package pipeline

import (
	"errors"
	"testing"

	"kiln/internal/services"
)

func TestSchemaResolveDefaultsAndOverrides(t *testing.T) {
	schema := Schema{
		{Name: "publish_template", Type: TypeString, Default: "/pub/{name}"},
		{Name: "frame_padding", Type: TypeInt, Default: 4},
		{Name: "overwrite", Type: TypeBool, Default: false},
	}

	settings, err := schema.Resolve(map[string]any{"overwrite": true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if settings.String("publish_template") != "/pub/{name}" {
		t.Fatalf("default not applied: %v", settings)
	}
	if settings.Int("frame_padding") != 4 {
		t.Fatalf("int default not applied: %v", settings)
	}
	if !settings.Bool("overwrite") {
		t.Fatal("override not applied")
	}
}

func TestSchemaResolveRequired(t *testing.T) {
	schema := Schema{{Name: "publish_extension", Type: TypeString, Required: true}}
	if _, err := schema.Resolve(nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing required setting, got %v", err)
	}
	if _, err := schema.Resolve(map[string]any{"publish_extension": "  "}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for blank required setting, got %v", err)
	}
	if _, err := schema.Resolve(map[string]any{"publish_extension": "tif"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchemaResolveTypeMismatch(t *testing.T) {
	schema := Schema{{Name: "frame_padding", Type: TypeInt}}
	if _, err := schema.Resolve(map[string]any{"frame_padding": "four"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for type mismatch, got %v", err)
	}
}

func TestSchemaResolveValidator(t *testing.T) {
	schema := Schema{{
		Name: "quality",
		Type: TypeInt,
		Validate: func(value any) error {
			if v, ok := value.(int); ok && (v < 0 || v > 100) {
				return errors.New("quality must be 0-100")
			}
			return nil
		},
	}}
	if _, err := schema.Resolve(map[string]any{"quality": 150}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error from validator, got %v", err)
	}
}

func TestSettingsStringSlice(t *testing.T) {
	settings := Settings{"filters": []any{"mari.texture", "mari.channel", 7}}
	got := settings.StringSlice("filters")
	if len(got) != 2 || got[0] != "mari.texture" || got[1] != "mari.channel" {
		t.Fatalf("unexpected slice: %v", got)
	}
	if settings.StringSlice("missing") != nil {
		t.Fatal("expected nil for missing list")
	}
}
