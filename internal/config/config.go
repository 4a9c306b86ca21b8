// Package config 读取项目级配置文件 accessorgen.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// FileName 默认配置文件名
const FileName = "accessorgen.yaml"

// 后缀策略
const (
	SuffixIndependent   = "independent"
	SuffixRequirePrefix = "require_prefix"
)

// Config 项目级配置
//
//	variants:
//	  getters:
//	    default_prefix: get
//	    suffix_policy: independent
//	optional_wrappers:
//	  - name: Optional
//	    constructor: Of
//	exclude:
//	  - "**/mocks/**"
//	output: $FILE_accessor.go
type Config struct {
	Variants         map[string]Variant `yaml:"variants" validate:"dive,keys,oneof=buildersetters basicsetters setters addsetters getters,endkeys"`
	OptionalWrappers []Wrapper          `yaml:"optional_wrappers" validate:"dive"`
	Exclude          []string           `yaml:"exclude"`
	Output           string             `yaml:"output"`
}

// Variant 覆盖某个访问器变体的默认策略，未设置的项保持内置值
type Variant struct {
	DefaultPrefix        *string `yaml:"default_prefix"`
	SuffixPolicy         string  `yaml:"suffix_policy" validate:"omitempty,oneof=independent require_prefix"`
	AllowEmptyVisibility *bool   `yaml:"allow_empty_visibility"`
}

// Wrapper 额外识别的可选值包装类型
type Wrapper struct {
	Name        string `yaml:"name" validate:"required"`        // 类型名，如 Option
	Constructor string `yaml:"constructor" validate:"required"` // 构造函数名，如 Some
}

// Default 内置配置
func Default() *Config {
	return &Config{Variants: map[string]Variant{}}
}

// Load 从文件加载配置，文件不存在时返回内置配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析并校验配置内容，未知字段视为错误
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.Variants == nil {
		cfg.Variants = map[string]Variant{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("无效的排除模式 %q", pattern)
		}
	}
	return nil
}

// Variant 返回指定变体的覆盖配置
func (c *Config) Variant(name string) (Variant, bool) {
	v, ok := c.Variants[name]
	return v, ok
}
