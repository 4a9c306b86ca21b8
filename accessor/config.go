package accessor

import (
	"fmt"
	"strings"
)

// Visibility 生成方法的可见性
type Visibility int

const (
	Public       Visibility = iota // pub，导出
	CrateVisible                   // pub(crate)，Go 中同样导出
	Private                        // private 或 ""，包内可见
)

var visibilityNames = []string{"pub", "pub(crate)", "private"}

// ParseVisibility 解析 visibility 参数，allowEmpty 为 true 时 "" 表示 Private
func ParseVisibility(s string, allowEmpty bool) (Visibility, error) {
	switch s {
	case "pub":
		return Public, nil
	case "pub(crate)":
		return CrateVisible, nil
	case "private":
		return Private, nil
	case "":
		if allowEmpty {
			return Private, nil
		}
	}

	allowed := strings.Join(visibilityNames, ", ")
	if allowEmpty {
		allowed += `, ""`
	}
	return 0, fmt.Errorf("invalid visibility %q, expected one of %s", s, allowed)
}

func (v Visibility) String() string {
	if int(v) < len(visibilityNames) {
		return visibilityNames[v]
	}
	return "unknown"
}

// Exported 是否生成导出的方法名
func (v Visibility) Exported() bool {
	return v != Private
}

// RefStrategy getter 的返回方式
type RefStrategy int

const (
	RefValue     RefStrategy = iota // none，按值返回
	RefReference                    // ref，返回字段指针
)

// ParseRefStrategy 解析 ref_strategy 参数
func ParseRefStrategy(s string) (RefStrategy, error) {
	switch s {
	case "none":
		return RefValue, nil
	case "ref":
		return RefReference, nil
	default:
		return 0, fmt.Errorf("invalid ref_strategy %q, expected one of ref, none", s)
	}
}

func (r RefStrategy) String() string {
	if r == RefReference {
		return "ref"
	}
	return "none"
}

// AccessorConfig 一个注解（或默认规则）解析出的完整方法配置
type AccessorConfig struct {
	Name        string // 方法名，下划线形式，如 with_bar
	Visibility  Visibility
	RefStrategy RefStrategy // 仅 getter
	WithInto    bool        // 仅 setter
}

// DefaultConfig 字段没有任何注解时的配置
func DefaultConfig(name string) AccessorConfig {
	return AccessorConfig{
		Name:        name,
		Visibility:  Public,
		RefStrategy: RefValue,
		WithInto:    true,
	}
}
