package accessor

import (
	"fmt"
	"go/token"

	"github.com/donutnomad/accessorgen/internal/utils"
)

// BodyKind 方法体的种类
type BodyKind int

const (
	BodyBuilderSetter  BodyKind = iota // 在副本上赋值并返回副本
	BodyMutatingSetter                 // 原地赋值，无返回值
	BodyGetter                         // 返回字段
)

func (b BodyKind) String() string {
	switch b {
	case BodyBuilderSetter:
		return "builder"
	case BodyMutatingSetter:
		return "mutating"
	case BodyGetter:
		return "getter"
	default:
		return "unknown"
	}
}

// ReturnKind 方法返回值的种类
type ReturnKind int

const (
	ReturnNothing   ReturnKind = iota
	ReturnSelf                 // 返回记录本身（值）
	ReturnValue                // 返回字段的值
	ReturnReference            // 返回字段的指针
)

// Param 方法参数
//
// Go 没有隐式转换，参数类型始终与 Type 完全一致。Convert 只让方法体写出
// 显式转换 T(v)，该转换是恒等转换，不改变签名和行为。
type Param struct {
	Name    string
	Type    TypeExpr
	Convert bool // 赋值前转换为参数类型，对应 with_into
}

// MethodSpec 与注解无关的方法描述，交给 emitter 渲染
type MethodSpec struct {
	Name       string // 解析出的方法名，如 with_bar
	Ident      string // Go 标识符，如 WithBar
	Visibility Visibility
	Field      string   // 访问的字段
	FieldType  TypeExpr // 字段的声明类型
	Params     []Param
	Return     ReturnKind
	ReturnType TypeExpr // Return 为 ReturnValue 或 ReturnReference 时有效，不含指针
	Body       BodyKind
	Signature  Signature
}

// Synthesize 根据配置和签名生成方法描述
//
// 字段名不是合法标识符时 panic，记录解析阶段已保证这种情况不会出现。
func Synthesize(field *Field, cfg AccessorConfig, sig Signature, body BodyKind) MethodSpec {
	if !token.IsIdentifier(field.Name) {
		panic(fmt.Sprintf("accessor: field name %q is not an identifier", field.Name))
	}

	m := MethodSpec{
		Name:       cfg.Name,
		Ident:      GoIdentifier(cfg.Name, cfg.Visibility),
		Visibility: cfg.Visibility,
		Field:      field.Name,
		FieldType:  field.Type,
		Body:       body,
		Signature:  sig,
	}

	switch body {
	case BodyBuilderSetter, BodyMutatingSetter:
		m.Params = []Param{{
			Name:    utils.SafeParamName(field.Name),
			Type:    sig.ParamType,
			Convert: cfg.WithInto,
		}}
		if body == BodyBuilderSetter {
			m.Return = ReturnSelf
		}
	case BodyGetter:
		m.ReturnType = field.Type
		m.Return = ReturnValue
		if cfg.RefStrategy == RefReference {
			m.Return = ReturnReference
		}
	}
	return m
}
