package accessor

import (
	"fmt"
	"go/token"

	"github.com/samber/mo"
)

// Resolver 将字段注解解析为访问器配置
type Resolver struct {
	policy *Policy
}

func NewResolver(policy *Policy) *Resolver {
	return &Resolver{policy: policy}
}

// Resolve 返回字段需要生成的全部配置，按注解顺序
//
//   - 字段被禁用：返回空
//   - 没有注解：返回一个默认配置
//   - 单参数注解合并为一个配置，同一参数后者生效
//   - CardinalitySingle 时只保留最后一个组合注解
func (r *Resolver) Resolve(field *Field) ([]AccessorConfig, error) {
	directives, disabled, err := r.policy.ParseDirectives(field)
	if err != nil {
		return nil, err
	}
	if disabled {
		return nil, nil
	}
	if len(directives) == 0 {
		cfg := DefaultConfig(ResolveName(mo.None[string](), mo.None[string](), mo.None[string](), field.Name, r.policy.DefaultPrefix))
		if err := r.checkName(field, "", cfg); err != nil {
			return nil, err
		}
		return []AccessorConfig{cfg}, nil
	}

	configs := make([]AccessorConfig, 0, len(directives))
	for _, d := range r.group(directives) {
		cfg, err := r.build(field, d)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// group 按基数规则整理注解
func (r *Resolver) group(directives []*Directive) []*Directive {
	var (
		groups []*Directive
		legacy *Directive
		last   *Directive
	)
	for _, d := range directives {
		switch d.Kind {
		case DirectiveLegacy:
			if legacy == nil {
				legacy = &Directive{Kind: DirectiveLegacy, Tag: d.Tag}
				groups = append(groups, legacy)
			}
			legacy.Params = append(legacy.Params, d.Params...)
		case DirectiveConfigure:
			if r.policy.Cardinality == CardinalityMulti {
				groups = append(groups, d)
			} else {
				last = d
			}
		}
	}

	if r.policy.Cardinality == CardinalityMulti || last == nil {
		return groups
	}
	if legacy == nil {
		return []*Directive{last}
	}
	// 单配置变体同时出现两种写法时合并，组合注解覆盖单参数注解
	legacy.Params = append(legacy.Params, last.Params...)
	return []*Directive{legacy}
}

func (r *Resolver) build(field *Field, d *Directive) (AccessorConfig, error) {
	name := lookupString(d, KeyName)
	prefix := lookupString(d, KeyPrefix)
	suffix := lookupString(d, KeySuffix)

	if name.IsPresent() {
		switch {
		case prefix.IsPresent() && suffix.IsPresent():
			return AccessorConfig{}, newError(ErrMutualExclusion, field, d.Tag,
				"`name` param cannot be set with `prefix` and `suffix` params", nil)
		case prefix.IsPresent():
			return AccessorConfig{}, newError(ErrMutualExclusion, field, d.Tag,
				"`name` param cannot be set with `prefix` param", nil)
		case suffix.IsPresent():
			return AccessorConfig{}, newError(ErrMutualExclusion, field, d.Tag,
				"`name` param cannot be set with `suffix` param", nil)
		}
	}
	if r.policy.SuffixPolicy == SuffixRequiresPrefix && suffix.IsPresent() && !prefix.IsPresent() {
		return AccessorConfig{}, newError(ErrMutualExclusion, field, d.Tag,
			"`suffix` param must be used with `prefix` param", nil)
	}

	cfg := DefaultConfig(ResolveName(name, prefix, suffix, field.Name, r.policy.DefaultPrefix))

	if v, ok := lookupString(d, KeyVisibility).Get(); ok {
		vis, err := ParseVisibility(v, r.policy.AllowEmptyVisibility)
		if err != nil {
			return AccessorConfig{}, newError(ErrInvalidEnum, field, d.Tag, err.Error(), nil)
		}
		cfg.Visibility = vis
	}
	if v, ok := lookupString(d, KeyRefStrategy).Get(); ok {
		ref, err := ParseRefStrategy(v)
		if err != nil {
			return AccessorConfig{}, newError(ErrInvalidEnum, field, d.Tag, err.Error(), nil)
		}
		cfg.RefStrategy = ref
	}
	if lit, ok := d.Lookup(KeyWithInto); ok {
		cfg.WithInto = lit.Bool
	}

	if err := r.checkName(field, d.Tag, cfg); err != nil {
		return AccessorConfig{}, err
	}
	return cfg, nil
}

// checkName 方法名及其 Go 标识符都必须合法
func (r *Resolver) checkName(field *Field, tag string, cfg AccessorConfig) error {
	if !token.IsIdentifier(cfg.Name) {
		return newError(ErrInvalidName, field, tag,
			fmt.Sprintf("%q is not a valid identifier", cfg.Name), nil)
	}
	if ident := GoIdentifier(cfg.Name, cfg.Visibility); !token.IsIdentifier(ident) {
		return newError(ErrInvalidName, field, tag,
			fmt.Sprintf("%q does not produce a valid %s method name (got %q)", cfg.Name, cfg.Visibility, ident), nil)
	}
	return nil
}

func lookupString(d *Directive, key ParamKey) mo.Option[string] {
	if lit, ok := d.Lookup(key); ok {
		return mo.Some(lit.Str)
	}
	return mo.None[string]()
}
