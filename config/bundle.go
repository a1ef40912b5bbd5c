// Package config loads declarative capability bundles: YAML documents that
// declare local modules and capability definitions, validated with struct
// tags before they touch a registry.
package config

import (
	stdErrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/traitkit-dev/traitkit/domain/entities"
	"github.com/traitkit-dev/traitkit/domain/errors"
	"github.com/traitkit-dev/traitkit/domain/fields"
	"github.com/traitkit-dev/traitkit/registry"
)

// validate is a package-level singleton; constructing a validator per call is
// expensive.
var validate = validator.New()

// Bundle is one parsed capability bundle.
type Bundle struct {
	// LocalModules are module patterns to declare local before any
	// capability is defined.
	LocalModules []string `yaml:"local_modules" validate:"dive,min=1"`

	// Capabilities are the definitions the bundle contributes.
	Capabilities []CapabilityConfig `yaml:"capabilities" validate:"dive"`
}

// CapabilityConfig declares one capability.
type CapabilityConfig struct {
	Name          string         `yaml:"name" validate:"required"`
	Version       string         `yaml:"version" validate:"omitempty,semver"`
	Description   string         `yaml:"description"`
	Module        string         `yaml:"module"`
	Seal          bool           `yaml:"seal"`
	Prerequisites []string       `yaml:"prerequisites" validate:"dive,required"`
	Required      []MemberConfig `yaml:"required" validate:"dive"`
	Optional      []MemberConfig `yaml:"optional" validate:"dive"`
}

// MemberConfig declares one capability member. Kind defaults to attribute.
// Type names a field template; defaults must be literal YAML values of the
// declared type. Nullable derivation supersedes a declared default.
type MemberConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Kind        string `yaml:"kind" validate:"omitempty,oneof=attribute callable"`
	Type        string `yaml:"type" validate:"omitempty,oneof=string int float bool time duration bytes strings floats map any"`
	Description string `yaml:"description"`
	Default     any    `yaml:"default"`
	Nullable    bool   `yaml:"nullable"`
	Listable    bool   `yaml:"listable"`
	Strict      bool   `yaml:"strict"`
}

// baseTemplates maps declared member types to their field templates.
var baseTemplates = map[string]*fields.FieldTemplate{
	"string":   fields.String,
	"int":      fields.Int,
	"float":    fields.Float,
	"bool":     fields.Bool,
	"time":     fields.Timestamp,
	"duration": fields.MustTemplateOf[time.Duration](),
	"bytes":    fields.MustTemplateOf[[]byte](),
	"strings":  fields.String.AsListable(true),
	"floats":   fields.Float.AsListable(true),
	"map":      fields.MustTemplateOf[map[string]any](),
	"any":      fields.Any,
}

// Load reads and parses a bundle file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a bundle document.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &errors.ConfigError{Err: fmt.Errorf("parse bundle: %w", err)}
	}
	if len(b.LocalModules) == 0 && len(b.Capabilities) == 0 {
		return nil, &errors.ConfigError{Err: fmt.Errorf("bundle declares nothing")}
	}
	if err := validate.Struct(&b); err != nil {
		var fieldErrs validator.ValidationErrors
		if stdErrors.As(err, &fieldErrs) {
			joined := make([]error, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				joined = append(joined, &errors.ConfigError{
					Field: fe.Namespace(),
					Err:   fmt.Errorf("failed on the %q rule", fe.Tag()),
				})
			}
			return nil, stdErrors.Join(joined...)
		}
		return nil, &errors.ConfigError{Err: err}
	}
	return &b, nil
}

// Apply declares the bundle's local modules, defines its capabilities and
// seals the flagged ones. It stops at the first failure; bundles load at
// startup, where a partial apply is a fatal condition either way.
func (b *Bundle) Apply(r *registry.Registry) error {
	for _, pattern := range b.LocalModules {
		if err := r.AddLocalModule(pattern); err != nil {
			return fmt.Errorf("add local module %q: %w", pattern, err)
		}
	}

	for _, c := range b.Capabilities {
		def, err := c.definition()
		if err != nil {
			return err
		}
		if err := r.Define(def); err != nil {
			return fmt.Errorf("define %s: %w", c.Name, err)
		}
		if c.Seal {
			if err := r.Seal(c.Name); err != nil {
				return fmt.Errorf("seal %s: %w", c.Name, err)
			}
		}
	}
	return nil
}

// definition builds the capability definition a config block declares.
func (c CapabilityConfig) definition() (entities.CapabilityDefinition, error) {
	def := entities.NewCapability(c.Name).
		WithVersion(c.Version).
		WithDescription(c.Description).
		WithModule(c.Module).
		WithPrerequisites(c.Prerequisites...)

	required, err := members(c.Name, "required", c.Required)
	if err != nil {
		return entities.CapabilityDefinition{}, err
	}
	optional, err := members(c.Name, "optional", c.Optional)
	if err != nil {
		return entities.CapabilityDefinition{}, err
	}
	return def.WithRequired(required...).WithOptional(optional...), nil
}

func members(capability, list string, configs []MemberConfig) ([]entities.Member, error) {
	out := make([]entities.Member, 0, len(configs))
	for _, m := range configs {
		member, err := m.member(fmt.Sprintf("%s.%s.%s", capability, list, m.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, nil
}

// member builds one entities.Member from its config block.
func (m MemberConfig) member(path string) (entities.Member, error) {
	if m.Kind == string(entities.MemberCallable) {
		if m.Type != "" || m.Default != nil || m.Nullable || m.Listable {
			return entities.Member{}, &errors.ConfigError{
				Field: path,
				Err:   fmt.Errorf("callable members take no value constraints"),
			}
		}
		return entities.Callable(m.Name).WithDescription(m.Description), nil
	}

	typeName := m.Type
	if typeName == "" {
		typeName = "any"
	}
	tpl := baseTemplates[typeName]

	var opts []fields.TemplateOption
	if m.Description != "" {
		opts = append(opts, fields.WithDescription(m.Description))
	}
	if m.Default != nil {
		opts = append(opts, fields.WithDefault(m.Default))
	}
	if len(opts) > 0 {
		derived, err := tpl.With(opts...)
		if err != nil {
			return entities.Member{}, &errors.ConfigError{Field: path, Err: err}
		}
		tpl = derived
	}
	if m.Listable {
		tpl = tpl.AsListable(m.Strict)
	}
	if m.Nullable {
		tpl = tpl.AsNullable()
	}
	return entities.AttrT(m.Name, tpl).WithDescription(m.Description), nil
}
