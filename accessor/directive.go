package accessor

import (
	"fmt"

	"github.com/donutnomad/accessorgen/plugin"
)

// ParamKey 注解参数名
type ParamKey string

const (
	KeyName        ParamKey = "name"
	KeyPrefix      ParamKey = "prefix"
	KeySuffix      ParamKey = "suffix"
	KeyVisibility  ParamKey = "visibility"
	KeyRefStrategy ParamKey = "ref_strategy"
	KeyWithInto    ParamKey = "with_into"
)

// Kind 参数要求的字面量类型
func (k ParamKey) Kind() plugin.LiteralKind {
	if k == KeyWithInto {
		return plugin.LiteralBool
	}
	return plugin.LiteralString
}

// DirectiveKind 注解的种类
type DirectiveKind int

const (
	DirectiveDisable   DirectiveKind = iota // 禁用字段
	DirectiveConfigure                      // 组合注解，@Tag(k=v, ...)
	DirectiveLegacy                         // 单参数注解，@Tag = v
)

// DirectiveParam 已检查类型的参数
type DirectiveParam struct {
	Key   ParamKey
	Value plugin.Literal
}

// Directive 解析后的字段注解
type Directive struct {
	Kind   DirectiveKind
	Tag    string
	Params []DirectiveParam
}

// Lookup 查找参数，重复出现时后者生效
func (d *Directive) Lookup(key ParamKey) (plugin.Literal, bool) {
	for i := len(d.Params) - 1; i >= 0; i-- {
		if d.Params[i].Key == key {
			return d.Params[i].Value, true
		}
	}
	return plugin.Literal{}, false
}

// ParseDirectives 提取字段上属于该变体的注解
//
// 字段带禁用注解时返回 disabled 为 true，其余注解一律忽略。
// 解析成功后被识别的注解从字段上移除，其他注解保持原样。
func (p *Policy) ParseDirectives(field *Field) (directives []*Directive, disabled bool, err error) {
	for _, ann := range field.Annotations {
		if ann.Name == p.DisableTag {
			disabled = true
			break
		}
	}

	if !disabled {
		for _, ann := range field.Annotations {
			var d *Directive
			switch {
			case p.UmbrellaTag != "" && ann.Name == p.UmbrellaTag:
				d, err = p.parseUmbrella(field, ann)
			case p.isLegacy(ann.Name):
				d, err = p.parseLegacy(field, ann)
			default:
				continue
			}
			if err != nil {
				return nil, false, err
			}
			directives = append(directives, d)
		}
	}

	p.strip(field)
	return directives, disabled, nil
}

func (p *Policy) isLegacy(tag string) bool {
	_, ok := p.LegacyTags[tag]
	return ok
}

// strip 移除字段上被识别的注解
func (p *Policy) strip(field *Field) {
	kept := field.Annotations[:0]
	for _, ann := range field.Annotations {
		if !p.Recognizes(ann.Name) {
			kept = append(kept, ann)
		}
	}
	field.Annotations = kept
}

func (p *Policy) parseUmbrella(field *Field, ann *plugin.Annotation) (*Directive, error) {
	if ann.HasValue {
		return nil, newError(ErrDirectiveSyntax, field, ann.Name,
			fmt.Sprintf("`@%s` must have `@%s(key = literal, ...)` format", ann.Name, ann.Name), nil)
	}
	if ann.Unterminated {
		return nil, newError(ErrDirectiveSyntax, field, ann.Name, "unterminated parameter list", nil)
	}

	d := &Directive{Kind: DirectiveConfigure, Tag: ann.Name}
	if !ann.HasArgs {
		return d, nil
	}

	args, err := plugin.ParseArgs(ann.Args)
	if err != nil {
		return nil, newError(ErrDirectiveSyntax, field, ann.Name, "malformed parameter list", err)
	}
	for _, arg := range args {
		key := ParamKey(arg.Key)
		if !p.Allows(key) {
			return nil, newError(ErrUnknownParameter, field, ann.Name,
				fmt.Sprintf("unexpected parameter `%s`", arg.Key), nil)
		}
		if err := checkKind(field, ann.Name, key, arg.Value); err != nil {
			return nil, err
		}
		d.Params = append(d.Params, DirectiveParam{Key: key, Value: arg.Value})
	}
	return d, nil
}

func (p *Policy) parseLegacy(field *Field, ann *plugin.Annotation) (*Directive, error) {
	key := p.LegacyTags[ann.Name]
	format := fmt.Sprintf("`@%s` must have `@%s = \"<%s>\"` format", ann.Name, ann.Name, key)
	if !ann.HasValue || ann.HasArgs {
		return nil, newError(ErrDirectiveSyntax, field, ann.Name, format, nil)
	}

	lit, err := plugin.ParseLiteral(ann.Value)
	if err != nil {
		return nil, newError(ErrDirectiveSyntax, field, ann.Name, format, err)
	}
	if err := checkKind(field, ann.Name, key, lit); err != nil {
		return nil, err
	}
	return &Directive{Kind: DirectiveLegacy, Tag: ann.Name, Params: []DirectiveParam{{Key: key, Value: lit}}}, nil
}

func checkKind(field *Field, tag string, key ParamKey, lit plugin.Literal) error {
	if lit.Kind == key.Kind() {
		return nil
	}
	return newError(ErrValueType, field, tag,
		fmt.Sprintf("unexpected value type for `%s`: expected %s, got %s", key, key.Kind(), lit.Kind), nil)
}
