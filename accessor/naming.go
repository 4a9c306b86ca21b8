package accessor

import (
	"strings"

	"github.com/donutnomad/accessorgen/internal/utils"
	"github.com/samber/mo"
)

// ResolveName 按优先级计算方法名：
//
//	name             → name
//	prefix + suffix  → prefix_suffix
//	prefix           → prefix_field
//	suffix           → default_suffix
//	都未设置          → default_field
//
// 空的组成部分在拼接时跳过。name 与 prefix/suffix 同时出现属于配置错误，由 Resolver 检查。
func ResolveName(explicit, prefix, suffix mo.Option[string], field, defaultPrefix string) string {
	if name, ok := explicit.Get(); ok {
		return name
	}

	return joinName(prefix.OrElse(defaultPrefix), suffix.OrElse(field))
}

func joinName(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "_")
}

// GoIdentifier 将方法名转换为对应可见性的 Go 标识符
//
//	with_bar, Public  → WithBar
//	with_bar, Private → withBar
func GoIdentifier(name string, vis Visibility) string {
	if vis.Exported() {
		return utils.ToPascalCase(name)
	}
	return utils.ToCamelCase(name)
}
