package structparse

import "go/ast"

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string // 显式别名（如果有）
	PackageName string // 真实包名（从 package 声明读取）
	ImportPath  string // 完整导入路径
}

// Qualifier 源码中引用该包时使用的限定符
func (i *ImportInfo) Qualifier() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.PackageName
}

// TypeParamInfo 泛型类型参数
type TypeParamInfo struct {
	Name       string // 参数名，如 T
	Constraint string // 约束，如 any、comparable、~int | ~string
}

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name     string   // 字段名，嵌入字段为类型名
	Type     string   // 字段类型的源码文本
	Expr     ast.Expr // 字段类型的 AST
	Embedded bool     // 是否为嵌入（匿名）字段
	Doc      string   // 字段上方的文档注释
	Comment  string   // 字段行尾注释
	Tag      string   // 字段标签（含反引号）

	PkgPath    string   // 类型所在包路径（仅限定类型）
	PkgAlias   string   // 包在源文件中的限定符
	Qualifiers []string // 类型中出现的全部包限定符，按出现顺序去重
}

// StructInfo 表示类型声明信息
type StructInfo struct {
	Name        string          // 类型名称
	PackageName string          // 包名
	FilePath    string          // 所在文件路径
	IsStruct    bool            // 是否为结构体声明
	TypeParams  []TypeParamInfo // 泛型参数
	Fields      []FieldInfo     // 字段列表，IsStruct 为 false 时为空

	// Imports 文件的导入信息
	// key: 源码中的包限定符
	Imports map[string]*ImportInfo
}

// Import 根据限定符查找导入信息
func (s *StructInfo) Import(qualifier string) (*ImportInfo, bool) {
	info, ok := s.Imports[qualifier]
	return info, ok
}
