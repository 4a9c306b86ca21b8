package accessor

import (
	"errors"
	"strings"
)

// 错误分类，配合 errors.Is 使用
var (
	ErrSchemaShape      = errors.New("schema shape error")
	ErrDirectiveSyntax  = errors.New("directive syntax error")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrValueType        = errors.New("value type mismatch")
	ErrMutualExclusion  = errors.New("mutually exclusive parameters")
	ErrInvalidEnum      = errors.New("invalid enum value")
	ErrInvalidName      = errors.New("invalid name")
)

// Error 扩展过程中的配置错误，出错的记录不产生任何输出
type Error struct {
	Kind      error  // 错误分类，取值为上面的哨兵错误
	Record    string // 记录名
	Field     string // 字段名，记录级错误为空
	Directive string // 出错的注解名，不含 @
	Msg       string
	Err       error // 底层错误，如词法错误
}

func (e *Error) Error() string {
	var sb strings.Builder
	switch {
	case e.Record != "" && e.Field != "":
		sb.WriteString(e.Record + "." + e.Field + ": ")
	case e.Record != "":
		sb.WriteString(e.Record + ": ")
	case e.Field != "":
		sb.WriteString(e.Field + ": ")
	}
	if e.Directive != "" {
		sb.WriteString("@" + e.Directive + ": ")
	}
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, field *Field, directive, msg string, cause error) *Error {
	e := &Error{Kind: kind, Directive: directive, Msg: msg, Err: cause}
	if field != nil {
		e.Field = field.Name
	}
	return e
}
