package utils

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// commonInitialisms 常见首字母缩略词，生成标识符时整体大写
var commonInitialisms = map[string]bool{
	"API": true, "ASCII": true, "CPU": true, "CSS": true, "DNS": true, "EOF": true,
	"GUID": true, "HTML": true, "HTTP": true, "HTTPS": true, "ID": true, "IP": true,
	"JSON": true, "LHS": true, "QPS": true, "RAM": true, "RHS": true, "RPC": true,
	"SLA": true, "SMTP": true, "SSH": true, "TLS": true, "TTL": true, "UID": true,
	"UI": true, "UUID": true, "URI": true, "URL": true, "UTF8": true, "VM": true,
	"XML": true, "XSRF": true, "XSS": true,
}

// IsInitialism 判断单词是否为常见缩略词（不区分大小写）
func IsInitialism(word string) bool {
	return commonInitialisms[strings.ToUpper(word)]
}

// ToPascalCase 将下划线分隔的名字转换为导出标识符
//
//	with_bar    -> WithBar
//	with_id     -> WithID
//	with_userID -> WithUserID
func ToPascalCase(name string) string {
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if IsInitialism(part) {
			sb.WriteString(strings.ToUpper(part))
			continue
		}
		sb.WriteString(UpperFirst(part))
	}
	return sb.String()
}

// ToCamelCase 将下划线分隔的名字转换为未导出标识符
//
//	with_bar -> withBar
//	url_path -> urlPath
//	URLPath  -> urlPath
func ToCamelCase(name string) string {
	pascal := ToPascalCase(name)
	if pascal == "" {
		return ""
	}
	return LowerFirst(pascal)
}

// UpperFirst 首字母大写
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst 开头的大写字母串转为小写
// 若大写串后紧跟小写字母，该串最后一个字母保留为下一个单词的首字母
func LowerFirst(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(runes):
	case unicode.IsLower(runes[n]):
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// IsGoKeyword 判断是否为 Go 关键字
func IsGoKeyword(s string) bool {
	return token.IsKeyword(s)
}

// SafeParamName 将字段名转换为可用作参数的变量名
//
//	Name -> name
//	Type -> typeVal
func SafeParamName(field string) string {
	name := LowerFirst(field)
	if name == "" || name == "_" {
		return "v"
	}
	if IsGoKeyword(name) || isPredeclared(name) {
		return name + "Val"
	}
	return name
}

// isPredeclared 会遮蔽预声明标识符的参数名
func isPredeclared(s string) bool {
	switch s {
	case "nil", "true", "false", "iota", "len", "cap", "new", "make", "append",
		"copy", "delete", "panic", "recover", "print", "println", "close",
		"string", "int", "bool", "byte", "rune", "error", "any":
		return true
	}
	return false
}
