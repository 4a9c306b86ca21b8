package accessor

import (
	"strings"

	"github.com/donutnomad/accessorgen/plugin"
)

// Shape 记录的形状
type Shape int

const (
	ShapeNamed     Shape = iota // 结构体，字段全部具名
	ShapeEmbedded               // 结构体中含有嵌入字段
	ShapeNotStruct              // 非结构体类型
)

func (s Shape) String() string {
	switch s {
	case ShapeNamed:
		return "named"
	case ShapeEmbedded:
		return "embedded"
	case ShapeNotStruct:
		return "not-struct"
	default:
		return "unknown"
	}
}

// TypeKind 类型表达式的结构分类
type TypeKind int

const (
	TypeNamed TypeKind = iota // 具名类型，可能带包限定符与泛型参数
	TypePointer
	TypeSlice
	TypeArray
	TypeMap
	TypeFunc
	TypeChan
	TypeOther
)

// TypeExpr 字段类型的结构描述，只保留推导签名需要的信息
type TypeExpr struct {
	Text      string     // 源码文本，如 mo.Option[string]
	Kind      TypeKind   // 结构分类
	Qualifier string     // 包限定符，如 mo
	Name      string     // 具名类型的头部名字，如 Option
	Args      []TypeExpr // 泛型参数
}

// Named 构造具名类型
func Named(qualifier, name string, args ...TypeExpr) TypeExpr {
	var sb strings.Builder
	if qualifier != "" {
		sb.WriteString(qualifier)
		sb.WriteByte('.')
	}
	sb.WriteString(name)
	if len(args) > 0 {
		sb.WriteByte('[')
		for i, arg := range args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.Text)
		}
		sb.WriteByte(']')
	}
	return TypeExpr{
		Text:      sb.String(),
		Kind:      TypeNamed,
		Qualifier: qualifier,
		Name:      name,
		Args:      args,
	}
}

// Ident 构造本包或内置的无参具名类型，如 uint16
func Ident(name string) TypeExpr {
	return Named("", name)
}

// Composite 构造非具名的复合类型
func Composite(kind TypeKind, text string) TypeExpr {
	return TypeExpr{Text: text, Kind: kind}
}

func (t TypeExpr) String() string {
	return t.Text
}

// TypeParam 记录的泛型参数
type TypeParam struct {
	Name       string
	Constraint string
}

// Field 记录中的字段
type Field struct {
	Name string
	Type TypeExpr

	// Annotations 字段上的原始注解，按源码顺序
	// 被识别的注解在解析后移除
	Annotations []*plugin.Annotation
}

// Record 待扩展的记录
type Record struct {
	Name        string
	PackageName string
	Shape       Shape
	TypeParams  []TypeParam
	Fields      []*Field
}

// TypeArgs 返回接收者上使用的泛型实参列表，如 [T, K]，无泛型时为空
func (r *Record) TypeArgs() string {
	if len(r.TypeParams) == 0 {
		return ""
	}
	names := make([]string, len(r.TypeParams))
	for i, p := range r.TypeParams {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// TypeRef 返回记录在方法签名中的类型引用，如 Box[T, K]
func (r *Record) TypeRef() string {
	return r.Name + r.TypeArgs()
}

// Field 根据名字查找字段
func (r *Record) Field(name string) *Field {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
