package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
)

// ParseStruct 解析指定文件中的类型声明（包级便捷函数）
func ParseStruct(filename, typeName string) (*StructInfo, error) {
	return NewParseContext().ParseStruct(filename, typeName)
}

// ParseStruct 解析指定文件中的类型声明
// 非结构体的具名类型同样返回，IsStruct 为 false
func (c *ParseContext) ParseStruct(filename, typeName string) (*StructInfo, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	typeSpec := findTypeSpec(file, typeName)
	if typeSpec == nil {
		return nil, fmt.Errorf("未找到类型 %s", typeName)
	}

	info := &StructInfo{
		Name:        typeName,
		PackageName: file.Name.Name,
		FilePath:    filename,
		TypeParams:  parseTypeParams(typeSpec.TypeParams),
		Imports:     c.extractImports(file),
	}

	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		return info, nil
	}
	info.IsStruct = true
	info.Fields = parseFields(structType.Fields, info.Imports)

	return info, nil
}

// findTypeSpec 查找顶层类型声明
func findTypeSpec(file *ast.File, name string) *ast.TypeSpec {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == name {
				return ts
			}
		}
	}
	return nil
}

func parseTypeParams(list *ast.FieldList) []TypeParamInfo {
	if list == nil {
		return nil
	}
	var params []TypeParamInfo
	for _, field := range list.List {
		constraint := types.ExprString(field.Type)
		for _, name := range field.Names {
			params = append(params, TypeParamInfo{Name: name.Name, Constraint: constraint})
		}
	}
	return params
}

// parseFields 按声明顺序解析字段，`A, B int` 展开为两个字段
func parseFields(list *ast.FieldList, imports map[string]*ImportInfo) []FieldInfo {
	if list == nil {
		return nil
	}

	var fields []FieldInfo
	for _, field := range list.List {
		base := FieldInfo{
			Type:       types.ExprString(field.Type),
			Expr:       field.Type,
			Doc:        strings.TrimSpace(field.Doc.Text()),
			Comment:    strings.TrimSpace(field.Comment.Text()),
			Qualifiers: collectQualifiers(field.Type),
		}
		if field.Tag != nil {
			base.Tag = field.Tag.Value
		}
		if q := headQualifier(field.Type); q != "" {
			base.PkgAlias = q
			if imp, ok := imports[q]; ok {
				base.PkgPath = imp.ImportPath
			}
		}

		if len(field.Names) == 0 {
			base.Embedded = true
			base.Name = embeddedName(field.Type)
			fields = append(fields, base)
			continue
		}
		for _, name := range field.Names {
			f := base
			f.Name = name.Name
			fields = append(fields, f)
		}
	}
	return fields
}

// embeddedName 嵌入字段的隐式字段名，如 *pkg.Base[T] 为 Base
func embeddedName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.SelectorExpr:
			return e.Sel.Name
		case *ast.Ident:
			return e.Name
		default:
			return types.ExprString(expr)
		}
	}
}
