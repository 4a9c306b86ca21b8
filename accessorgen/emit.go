package accessorgen

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/donutnomad/accessorgen/accessor"
	"github.com/donutnomad/gg"
)

// Emit 将记录的扩展结果渲染到 gen
//
// 每个方法前带一行注释，方法之间空一行。
func Emit(gen *gg.Generator, src *Source, exp *accessor.Expansion, params AccessorParams) {
	for _, imp := range src.Imports(exp.Methods) {
		if imp.Alias != "" {
			gen.PAlias(imp.Path, imp.Alias)
		} else {
			gen.P(imp.Path)
		}
	}

	e := &emitter{
		src:      src,
		body:     gen.Body(),
		record:   exp.Record,
		receiver: receiverName(exp.Record.Name, params.Receiver),
	}
	for i, m := range exp.Methods {
		if i > 0 {
			e.body.AddLine()
		}
		e.method(m)
	}
}

type emitter struct {
	src      *Source
	body     *gg.Group
	record   *accessor.Record
	receiver string
}

func (e *emitter) method(m accessor.MethodSpec) {
	typeRef := e.record.TypeRef()
	field := e.receiver + "." + m.Field

	switch m.Body {
	case accessor.BodyBuilderSetter:
		param := e.param(m)
		e.body.Append(gg.LineComment("%s 设置 %s 并返回修改后的副本", m.Ident, m.Field))
		e.body.NewFunction(m.Ident).
			WithReceiver(e.receiver, typeRef).
			AddParameter(param, m.Params[0].Type.Text).
			AddResult("", typeRef).
			AddBody(
				gg.S("%s = %s", field, assignExpr(m, param)),
				gg.Return(gg.S("%s", e.receiver)),
			)

	case accessor.BodyMutatingSetter:
		param := e.param(m)
		e.body.Append(gg.LineComment("%s 设置 %s", m.Ident, m.Field))
		e.body.NewFunction(m.Ident).
			WithReceiver(e.receiver, "*"+typeRef).
			AddParameter(param, m.Params[0].Type.Text).
			AddBody(gg.S("%s = %s", field, assignExpr(m, param)))

	case accessor.BodyGetter:
		if m.Return == accessor.ReturnReference {
			e.body.Append(gg.LineComment("%s 返回 %s 的指针", m.Ident, m.Field))
			e.body.NewFunction(m.Ident).
				WithReceiver(e.receiver, "*"+typeRef).
				AddResult("", "*"+m.ReturnType.Text).
				AddBody(gg.Return(gg.S("&%s", field)))
			return
		}
		e.body.Append(gg.LineComment("%s 返回 %s", m.Ident, m.Field))
		e.body.NewFunction(m.Ident).
			WithReceiver(e.receiver, typeRef).
			AddResult("", m.ReturnType.Text).
			AddBody(gg.Return(gg.S("%s", field)))
	}
}

// param 参数名与接收者或方法体中的包限定符同名时加后缀
//
//	func (j Job) WithTime(timeVal time.Time) Job
func (e *emitter) param(m accessor.MethodSpec) string {
	name := m.Params[0].Name
	if name == e.receiver || slices.Contains(e.src.methodQualifiers(m), name) {
		return name + "Val"
	}
	return name
}

// assignExpr 赋值号右侧的表达式
//
//	bar                  with_into=false
//	uint16(bar)          with_into=true
//	mo.Some(string(v))   可选值包装
//
// with_into 生成的转换是恒等转换，两种写法编译结果相同。
func assignExpr(m accessor.MethodSpec, param string) string {
	expr := param
	if p := m.Params[0]; p.Convert {
		expr = conversion(p.Type.Text, param)
	}
	if m.Signature.Wrap == accessor.WrapInOptional {
		expr = fmt.Sprintf("%s(%s)", m.Signature.Constructor(), expr)
	}
	return expr
}

// conversion 类型转换表达式，以 * <- func chan 开头的类型需要括号
func conversion(typ, value string) string {
	for _, prefix := range []string{"*", "<-", "func", "chan"} {
		if strings.HasPrefix(typ, prefix) {
			return fmt.Sprintf("(%s)(%s)", typ, value)
		}
	}
	return fmt.Sprintf("%s(%s)", typ, value)
}

// receiverName 默认使用记录名首字母的小写
func receiverName(recordName, override string) string {
	if override != "" {
		return override
	}
	for _, r := range recordName {
		return string(unicode.ToLower(r))
	}
	return "r"
}
