package plugin

import (
	"regexp"
	"strings"
)

// paramRegex 宽松匹配参数:
// - key=`value` (反引号格式)
// - key="value" (双引号格式)
// - key=value (普通格式)
var paramRegex = regexp.MustCompile("(\\w+)\\s*=\\s*`([^`]*)`|(\\w+)\\s*=\\s*\"((?:[^\"\\\\]|\\\\.)*)\"|(\\w+)\\s*=\\s*([^,\\s]+)")

// ParseAnnotations 从注释文本中解析所有注解
// 括号内的引号会被正确跳过，因此 @Tag(visibility="pub(crate)") 可以完整识别
func ParseAnnotations(comment string) []*Annotation {
	var annotations []*Annotation

	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "//")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "@") {
			continue
		}
		annotations = append(annotations, scanLine(line)...)
	}

	return annotations
}

// scanLine 扫描单行中的注解
func scanLine(line string) []*Annotation {
	var annotations []*Annotation

	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		// 排除 foo@bar.com 这类文本
		if i > 0 && (isIdentByte(line[i-1]) || line[i-1] == '.') {
			continue
		}

		nameEnd := i + 1
		for nameEnd < len(line) && isIdentByte(line[nameEnd]) {
			nameEnd++
		}
		if nameEnd == i+1 {
			continue
		}

		ann := &Annotation{
			Name:   line[i+1 : nameEnd],
			Params: make(map[string]string),
		}
		end := nameEnd

		switch {
		case nameEnd < len(line) && line[nameEnd] == '(':
			ann.HasArgs = true
			closeIdx := findClosingParen(line, nameEnd)
			if closeIdx < 0 {
				ann.Unterminated = true
				ann.Args = line[nameEnd+1:]
				end = len(line)
			} else {
				ann.Args = line[nameEnd+1 : closeIdx]
				end = closeIdx + 1
			}
			ann.Params = parseParams(ann.Args)

		default:
			// @Name = literal
			k := skipSpaces(line, nameEnd)
			if k < len(line) && line[k] == '=' && (k+1 >= len(line) || line[k+1] != '=') {
				valueStart := skipSpaces(line, k+1)
				valueEnd := scanValueToken(line, valueStart)
				ann.HasValue = true
				ann.Value = line[valueStart:valueEnd]
				end = valueEnd
			}
		}

		ann.Raw = line[i:end]
		annotations = append(annotations, ann)
		i = end - 1
	}

	return annotations
}

// findClosingParen 查找与 open 位置的 '(' 匹配的 ')'，跳过引号内的内容
func findClosingParen(line string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote == '"':
				i++
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scanValueToken 扫描 `=` 之后的字面量，引号字面量整体返回，否则截止到空白
func scanValueToken(line string, start int) int {
	if start >= len(line) {
		return start
	}
	if q := line[start]; q == '"' || q == '`' {
		for i := start + 1; i < len(line); i++ {
			if line[i] == '\\' && q == '"' {
				i++
				continue
			}
			if line[i] == q {
				return i + 1
			}
		}
		return len(line)
	}
	i := start
	for i < len(line) && line[i] != ' ' && line[i] != '\t' {
		i++
	}
	return i
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// parseParams 宽松解析注解参数，供生成器级参数使用
func parseParams(content string) map[string]string {
	params := make(map[string]string)

	for _, match := range paramRegex.FindAllStringSubmatch(content, -1) {
		var key, value string
		switch {
		case match[1] != "":
			key, value = match[1], match[2]
		case match[3] != "":
			key, value = match[3], match[4]
		case match[5] != "":
			key, value = match[5], match[6]
		}
		if key != "" {
			params[strings.ToLower(key)] = value
		}
	}

	return params
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}

	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}

	var result []*Annotation
	for _, ann := range annotations {
		if nameSet[ann.Name] {
			result = append(result, ann)
		}
	}
	return result
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	return GetAnnotation(annotations, name) != nil
}

// GetAnnotation 获取指定名称的注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	for _, ann := range annotations {
		if ann.Name == name {
			return ann
		}
	}
	return nil
}

// GetParam 获取注解参数
func (a *Annotation) GetParam(key string) string {
	return a.Params[strings.ToLower(key)]
}

// GetParamOr 获取注解参数，如果不存在返回默认值
func (a *Annotation) GetParamOr(key, defaultValue string) string {
	if v, ok := a.Params[strings.ToLower(key)]; ok {
		return v
	}
	return defaultValue
}

// HasParam 检查是否有指定参数
func (a *Annotation) HasParam(key string) bool {
	_, ok := a.Params[strings.ToLower(key)]
	return ok
}
