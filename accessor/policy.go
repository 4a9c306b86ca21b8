package accessor

import (
	"fmt"
	"maps"
	"slices"
)

// Cardinality 每个字段允许产生的配置数量
type Cardinality int

const (
	CardinalityMulti  Cardinality = iota // 每个注解各自产生一个配置
	CardinalitySingle                    // 只保留最后一个注解
)

// SuffixPolicy 单独指定 suffix 时的处理方式
type SuffixPolicy int

const (
	SuffixIndependent    SuffixPolicy = iota // suffix 使用默认前缀
	SuffixRequiresPrefix                     // suffix 必须与 prefix 同时出现
)

// ParseSuffixPolicy 解析配置文件中的后缀策略
func ParseSuffixPolicy(s string) (SuffixPolicy, error) {
	switch s {
	case "independent":
		return SuffixIndependent, nil
	case "require_prefix":
		return SuffixRequiresPrefix, nil
	default:
		return 0, fmt.Errorf("invalid suffix policy %q, expected one of independent, require_prefix", s)
	}
}

func (p SuffixPolicy) String() string {
	if p == SuffixRequiresPrefix {
		return "require_prefix"
	}
	return "independent"
}

// Policy 描述一种访问器变体
type Policy struct {
	Variant   string // 变体名，同时用作生成器名
	RecordTag string // 记录级触发注解，如 BuilderSetters

	UmbrellaTag string              // 字段级组合注解，如 BuilderSetter，为空表示不支持
	DisableTag  string              // 字段级禁用注解
	LegacyTags  map[string]ParamKey // 单参数注解 → 参数，如 SetterPrefix → prefix

	AllowedKeys          []ParamKey
	DefaultPrefix        string
	Cardinality          Cardinality
	SuffixPolicy         SuffixPolicy
	AllowEmptyVisibility bool
	Body                 BodyKind
}

var settersKeys = []ParamKey{KeyName, KeyPrefix, KeySuffix, KeyVisibility, KeyWithInto}

// BuilderSetters 返回副本的 setter，支持多个 @BuilderSetter
func BuilderSetters() *Policy {
	return &Policy{
		Variant:              "buildersetters",
		RecordTag:            "BuilderSetters",
		UmbrellaTag:          "BuilderSetter",
		DisableTag:           "DisableBuilderSetters",
		AllowedKeys:          slices.Clone(settersKeys),
		DefaultPrefix:        "with",
		Cardinality:          CardinalityMulti,
		SuffixPolicy:         SuffixIndependent,
		AllowEmptyVisibility: true,
		Body:                 BodyBuilderSetter,
	}
}

// BasicSetters 原地修改的 setter，支持多个 @BasicSetter
func BasicSetters() *Policy {
	return &Policy{
		Variant:              "basicsetters",
		RecordTag:            "BasicSetters",
		UmbrellaTag:          "BasicSetter",
		DisableTag:           "DisableBasicSetters",
		AllowedKeys:          slices.Clone(settersKeys),
		DefaultPrefix:        "set",
		Cardinality:          CardinalityMulti,
		SuffixPolicy:         SuffixIndependent,
		AllowEmptyVisibility: true,
		Body:                 BodyMutatingSetter,
	}
}

// Setters 返回副本的 setter，每个字段只取最后一个 @ConfigureSetter
func Setters() *Policy {
	return &Policy{
		Variant:       "setters",
		RecordTag:     "Setters",
		UmbrellaTag:   "ConfigureSetter",
		DisableTag:    "DisableSetters",
		AllowedKeys:   []ParamKey{KeyName, KeyPrefix, KeySuffix, KeyVisibility},
		DefaultPrefix: "with",
		Cardinality:   CardinalitySingle,
		SuffixPolicy:  SuffixIndependent,
		Body:          BodyBuilderSetter,
	}
}

// AddSetters 使用单参数注解配置的 setter
func AddSetters() *Policy {
	return &Policy{
		Variant:    "addsetters",
		RecordTag:  "AddSetters",
		DisableTag: "DisableSetter",
		LegacyTags: map[string]ParamKey{
			"SetterName":   KeyName,
			"SetterPrefix": KeyPrefix,
			"SetterSuffix": KeySuffix,
		},
		AllowedKeys:   []ParamKey{KeyName, KeyPrefix, KeySuffix},
		DefaultPrefix: "with",
		Cardinality:   CardinalitySingle,
		SuffixPolicy:  SuffixIndependent,
		Body:          BodyBuilderSetter,
	}
}

// Getters 使用单参数注解配置的 getter，默认方法名为字段名
func Getters() *Policy {
	return &Policy{
		Variant:    "getters",
		RecordTag:  "Getters",
		DisableTag: "DisableGetter",
		LegacyTags: map[string]ParamKey{
			"GetterName":        KeyName,
			"GetterPrefix":      KeyPrefix,
			"GetterSuffix":      KeySuffix,
			"GetterVisibility":  KeyVisibility,
			"GetterRefStrategy": KeyRefStrategy,
		},
		AllowedKeys:   []ParamKey{KeyName, KeyPrefix, KeySuffix, KeyVisibility, KeyRefStrategy},
		DefaultPrefix: "",
		Cardinality:   CardinalitySingle,
		SuffixPolicy:  SuffixRequiresPrefix,
		Body:          BodyGetter,
	}
}

// Policies 返回全部内置变体
func Policies() []*Policy {
	return []*Policy{BuilderSetters(), BasicSetters(), Setters(), AddSetters(), Getters()}
}

// Clone 深拷贝
func (p *Policy) Clone() *Policy {
	c := *p
	c.LegacyTags = maps.Clone(p.LegacyTags)
	c.AllowedKeys = slices.Clone(p.AllowedKeys)
	return &c
}

// Allows 判断参数是否属于该变体
func (p *Policy) Allows(key ParamKey) bool {
	return slices.Contains(p.AllowedKeys, key)
}

// Recognizes 判断注解是否由该变体消费
func (p *Policy) Recognizes(tag string) bool {
	if tag == p.DisableTag || (p.UmbrellaTag != "" && tag == p.UmbrellaTag) {
		return true
	}
	_, ok := p.LegacyTags[tag]
	return ok
}

// FieldTags 返回该变体识别的字段级注解，组合注解在前，单参数注解按名字排序
func (p *Policy) FieldTags() []string {
	var tags []string
	if p.UmbrellaTag != "" {
		tags = append(tags, p.UmbrellaTag)
	}
	tags = append(tags, slices.Sorted(maps.Keys(p.LegacyTags))...)
	return append(tags, p.DisableTag)
}
