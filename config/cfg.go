package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validator "github.com/go-playground/validator/v10"
	sprig "github.com/go-task/slim-sprig/v3"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"svgsprite/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// OverrideConfig changes symbol options for documents with identifiers
	// matching glob pattern. First matching override wins.
	OverrideConfig struct {
		Match        string            `yaml:"match" validate:"required"`
		CleanSymbols []string          `yaml:"clean_symbols,omitempty" validate:"dive,required"`
		SymbolAttrs  map[string]string `yaml:"symbol_attrs,omitempty"`
	}

	StubsConfig struct {
		Enable    bool   `yaml:"enable"`
		Dir       string `yaml:"dir"`
		Extension string `yaml:"extension" validate:"required_if=Enable true"`
		Template  string `yaml:"template" validate:"required_if=Enable true"`
	}

	SpriteConfig struct {
		Mode               common.OutputMode  `yaml:"mode" validate:"gte=0"`
		Output             string             `yaml:"output" validate:"required"`
		AssetNameTemplate  string             `yaml:"asset_name_template" validate:"required_if=Mode 1"`
		PublicPath         string             `yaml:"public_path"`
		Extensions         []string           `yaml:"extensions" validate:"min=1,dive,startswith=."`
		TransliterateNames bool               `yaml:"transliterate_names"`
		Dimensions         common.Dimensions  `yaml:"dimensions" validate:"gte=0"`
		CleanSymbols       []string           `yaml:"clean_symbols" validate:"dive,required"`
		SymbolAttrs        map[string]string  `yaml:"symbol_attrs"`
		Overrides          []OverrideConfig   `yaml:"overrides" validate:"dive"`
		OnError            common.ErrorPolicy `yaml:"on_error" validate:"gte=0"`
		Stubs              StubsConfig        `yaml:"stubs"`
	}

	CacheConfig struct {
		Enable bool   `yaml:"enable"`
		Path   string `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
	}

	WatchConfig struct {
		Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Sprite    SpriteConfig   `yaml:"sprite"`
		Cache     CacheConfig    `yaml:"cache"`
		Watch     WatchConfig    `yaml:"watch"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	StubTemplateFieldName      TemplateFieldName = "template"
	AssetNameTemplateFieldName TemplateFieldName = "asset_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(StubTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(AssetNameTemplateFieldName)),
)

// HasExtension reports whether path has one of configured source extensions.
func (conf *SpriteConfig) HasExtension(ext string) bool {
	for _, e := range conf.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// additionalChecks validates what tags cannot express: templates must
// parse and override patterns must be valid globs.
func additionalChecks(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	for name, field := range map[TemplateFieldName]string{
		StubTemplateFieldName:      cfg.Sprite.Stubs.Template,
		AssetNameTemplateFieldName: cfg.Sprite.AssetNameTemplate,
	} {
		if _, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field); err != nil {
			sl.ReportError(field, string(name), string(name), "template", err.Error())
		}
	}
	for i, o := range cfg.Sprite.Overrides {
		if !doublestar.ValidatePattern(o.Match) {
			sl.ReportError(o.Match, fmt.Sprintf("overrides[%d].match", i), "Match", "glob", "")
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(additionalChecks)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
