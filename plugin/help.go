package plugin

import (
	"fmt"
	"strings"
)

// FieldHelper 可选接口，生成器通过它描述字段级注解
type FieldHelper interface {
	FieldAnnotations() []string
}

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder

	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}
		main := annotations[0]

		fmt.Fprintf(&sb, "  @%s - %s\n", main, gen.Name())

		sb.WriteString("    参数:\n")
		sb.WriteString("      output - 输出文件路径（支持模板变量）\n")
		for _, param := range gen.ParamDefs() {
			sb.WriteString("      " + FormatParamDef(param) + "\n")
		}

		if fh, ok := gen.(FieldHelper); ok {
			if fields := fh.FieldAnnotations(); len(fields) > 0 {
				sb.WriteString("    字段注解:\n")
				for _, f := range fields {
					sb.WriteString("      " + f + "\n")
				}
			}
		}

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", main)
		fmt.Fprintf(&sb, "      @%s(output=$FILE_accessor.go)\n", main)

		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	var sb strings.Builder
	sb.WriteString(param.Name)
	if param.Required {
		sb.WriteString(" (必填)")
	}
	if param.Default != "" {
		fmt.Fprintf(&sb, " [默认: %s]", param.Default)
	}
	if param.Description != "" {
		sb.WriteString(" - " + param.Description)
	}
	return sb.String()
}
