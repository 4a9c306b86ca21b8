package accessor

// WrapMode setter 赋值时是否需要包装
type WrapMode int

const (
	WrapIdentity   WrapMode = iota // 直接赋值
	WrapInOptional                 // 包装为可选值后赋值
)

func (m WrapMode) String() string {
	if m == WrapInOptional {
		return "optional"
	}
	return "identity"
}

// OptionalWrapper 可选值包装类型，按名字识别
type OptionalWrapper struct {
	Name        string // 类型头部名字，如 Option
	Constructor string // 构造有值实例的函数名，如 Some
}

// DefaultWrapper github.com/samber/mo 的 Option
var DefaultWrapper = OptionalWrapper{Name: "Option", Constructor: "Some"}

// Signature 推导出的 setter 签名
type Signature struct {
	ParamType TypeExpr // setter 参数类型
	Wrap      WrapMode
	Wrapper   OptionalWrapper // Wrap == WrapInOptional 时有效
	Qualifier string          // 包装类型的包限定符，构造函数沿用
}

// Constructor 返回限定后的构造函数，如 mo.Some
func (s Signature) Constructor() string {
	if s.Qualifier == "" {
		return s.Wrapper.Constructor
	}
	return s.Qualifier + "." + s.Wrapper.Constructor
}

// Deriver 签名推导器
//
// 只做浅层的名字匹配：类型别名和指向包装类型的指针都不会被识别。
type Deriver struct {
	wrappers []OptionalWrapper
}

// NewDeriver 未指定包装类型时使用 DefaultWrapper
func NewDeriver(wrappers ...OptionalWrapper) *Deriver {
	if len(wrappers) == 0 {
		wrappers = []OptionalWrapper{DefaultWrapper}
	}
	return &Deriver{wrappers: wrappers}
}

// Derive 字段类型为单参数包装类型时返回其内部类型，否则原样返回
func (d *Deriver) Derive(t TypeExpr) Signature {
	if t.Kind == TypeNamed && len(t.Args) == 1 {
		for _, w := range d.wrappers {
			if t.Name == w.Name {
				return Signature{
					ParamType: t.Args[0],
					Wrap:      WrapInOptional,
					Wrapper:   w,
					Qualifier: t.Qualifier,
				}
			}
		}
	}
	return Signature{ParamType: t, Wrap: WrapIdentity}
}
