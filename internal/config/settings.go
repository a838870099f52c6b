package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const redacted = "[REDACTED]"

// Settings is the parsed settings.yml: one entry per site, in file order.
type Settings struct {
	Path  string
	Sites []SiteConfig
}

// SiteConfig holds what to track on one site and the script credentials used to reach it.
type SiteConfig struct {
	URL             string
	Credentials     Credentials
	GlobalEntity    string
	TrackGlobally   []TrackingRule
	ProjectEntity   string
	TrackPerProject []TrackingRule
}

// Credentials is a ShotGrid script name and key. It never renders its contents.
type Credentials struct {
	ScriptName string
	ScriptKey  string
}

func (c Credentials) String() string { return redacted }

func (c Credentials) GoString() string { return redacted }

func (c Credentials) LogValue() slog.Value { return slog.StringValue(redacted) }

// Complete reports whether both the script name and key are set.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.ScriptName) != "" && strings.TrimSpace(c.ScriptKey) != ""
}

// TrackingRule counts entities matching Filters and writes the count to WriteToField.
type TrackingRule struct {
	EntityType   string `yaml:"entity_type" validate:"required"`
	Filters      []any  `yaml:"filters"`
	WriteToField string `yaml:"write_to_field" validate:"required"`
}

type siteDocument struct {
	ScriptName      string         `yaml:"script_name" validate:"required,notblank"`
	ScriptKey       string         `yaml:"script_key" validate:"required,notblank"`
	GlobalEntity    string         `yaml:"global_data_point_entity"`
	TrackGlobally   []TrackingRule `yaml:"track_globally" validate:"required_with=GlobalEntity,dive"`
	ProjectEntity   string         `yaml:"project_data_point_entity"`
	TrackPerProject []TrackingRule `yaml:"track_per_project" validate:"required_with=ProjectEntity,dive"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(yamlFieldName)
		// must agree with Credentials.Complete
		if err := validate.RegisterValidation("notblank", notBlank); err != nil {
			panic(fmt.Sprintf("register notblank validation: %v", err))
		}
	})
	return validate
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func yamlFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// LoadSettings reads and validates the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: did not find %s", ErrSettingsNotFound, path)
		}
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}
	return ParseSettings(path, data)
}

// ParseSettings parses settings data; path is only used in error messages.
func ParseSettings(path string, data []byte) (*Settings, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: could not parse %s: %v", ErrInvalidConfig, path, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySettings, path)
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.MappingNode:
	case yaml.SequenceNode:
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySettings, path)
		}
		return nil, fmt.Errorf("%w: could not parse %s: expected a mapping of site URLs", ErrInvalidConfig, path)
	case yaml.ScalarNode:
		if isFalsy(doc) {
			return nil, fmt.Errorf("%w: %s", ErrEmptySettings, path)
		}
		return nil, fmt.Errorf("%w: could not parse %s: expected a mapping of site URLs", ErrInvalidConfig, path)
	default:
		return nil, fmt.Errorf("%w: could not parse %s: expected a mapping of site URLs", ErrInvalidConfig, path)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySettings, path)
	}

	settings := &Settings{Path: path}
	var violations []Violation
	seen := make(map[string]bool)

	for i := 0; i+1 < len(doc.Content); i += 2 {
		url := strings.TrimSpace(doc.Content[i].Value)
		if seen[url] {
			violations = append(violations, Violation{Site: url, Problem: "is defined more than once"})
			continue
		}
		seen[url] = true

		var site siteDocument
		if err := doc.Content[i+1].Decode(&site); err != nil {
			violations = append(violations, Violation{Site: url, Problem: fmt.Sprintf("could not be parsed: %v", err)})
			continue
		}

		violations = append(violations, validateSite(url, site)...)
		settings.Sites = append(settings.Sites, SiteConfig{
			URL: url,
			Credentials: Credentials{
				ScriptName: site.ScriptName,
				ScriptKey:  site.ScriptKey,
			},
			GlobalEntity:    site.GlobalEntity,
			TrackGlobally:   site.TrackGlobally,
			ProjectEntity:   site.ProjectEntity,
			TrackPerProject: site.TrackPerProject,
		})
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Path: path, Violations: violations}
	}
	return settings, nil
}

func validateSite(url string, site siteDocument) []Violation {
	var violations []Violation
	v := getValidator()

	if err := v.Var(url, "required,url"); err != nil {
		violations = append(violations, Violation{Site: url, Problem: "is not a valid site URL"})
	}

	err := v.Struct(site)
	if err == nil {
		return violations
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return append(violations, Violation{Site: url, Problem: err.Error()})
	}
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Site:    url,
			Field:   fieldPath(fe.Namespace()),
			Problem: describe(fe),
		})
	}
	return violations
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

var paramNames = map[string]string{
	"GlobalEntity":  "global_data_point_entity",
	"ProjectEntity": "project_data_point_entity",
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "is blank"
	case "required_with":
		name := paramNames[fe.Param()]
		if name == "" {
			name = fe.Param()
		}
		return fmt.Sprintf("is required when %s is set", name)
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func isFalsy(n *yaml.Node) bool {
	switch n.Tag {
	case "!!null":
		return true
	case "!!bool":
		return strings.EqualFold(n.Value, "false")
	case "!!int", "!!float":
		return strings.Trim(n.Value, "0.+-") == ""
	case "!!str":
		return n.Value == ""
	}
	return false
}
