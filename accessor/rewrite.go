package accessor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/donutnomad/accessorgen/plugin"
)

// Expansion 一个记录的扩展结果
type Expansion struct {
	Record  *Record      // 注解已剥离的记录，字段布局不变
	Methods []MethodSpec // 按字段顺序，同一字段内按注解顺序
}

// Option Engine 选项
type Option func(*Engine)

// WithWrappers 指定可识别的可选值包装类型
func WithWrappers(wrappers ...OptionalWrapper) Option {
	return func(e *Engine) {
		if len(wrappers) > 0 {
			e.deriver = NewDeriver(wrappers...)
		}
	}
}

// Engine 按变体扩展记录
type Engine struct {
	policy   *Policy
	resolver *Resolver
	deriver  *Deriver
}

func New(policy *Policy, opts ...Option) *Engine {
	e := &Engine{
		policy:   policy,
		resolver: NewResolver(policy),
		deriver:  NewDeriver(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Policy() *Policy {
	return e.policy
}

// Expand 为记录生成方法
//
// 记录必须是字段全部具名的结构体。任何错误都会中止整个记录的扩展，不返回部分结果。
// 字段上被识别的注解会被原地移除，因此对同一记录再次扩展不会再读到这些注解。
// 出错时所有字段的注解恢复原状。
func (e *Engine) Expand(record *Record) (*Expansion, error) {
	if record.Shape != ShapeNamed {
		return nil, &Error{
			Kind:   ErrSchemaShape,
			Record: record.Name,
			Msg:    fmt.Sprintf("`%s` only supports structs with named fields", e.policy.RecordTag),
		}
	}

	saved := make([][]*plugin.Annotation, len(record.Fields))
	for i, field := range record.Fields {
		saved[i] = slices.Clone(field.Annotations)
	}

	var methods []MethodSpec
	for _, field := range record.Fields {
		configs, err := e.resolver.Resolve(field)
		if err != nil {
			for i, f := range record.Fields {
				f.Annotations = saved[i]
			}
			var ae *Error
			if errors.As(err, &ae) && ae.Record == "" {
				ae.Record = record.Name
			}
			return nil, err
		}
		if len(configs) == 0 {
			continue
		}

		sig := e.deriver.Derive(field.Type)
		for _, cfg := range configs {
			methods = append(methods, Synthesize(field, cfg, sig, e.policy.Body))
		}
	}

	return &Expansion{Record: record, Methods: methods}, nil
}
