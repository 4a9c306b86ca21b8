package structparse

import (
	"go/ast"
	"strconv"

	"github.com/donutnomad/accessorgen/internal/pkgresolver"
)

// extractImports 提取文件中的导入信息，key 为源码中的限定符
// 空白导入与点导入不产生限定符，被忽略
func (c *ParseContext) extractImports(file *ast.File) map[string]*ImportInfo {
	imports := make(map[string]*ImportInfo, len(file.Imports))
	resolver := c.GetResolver()

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		info := &ImportInfo{ImportPath: importPath}
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			info.Alias = imp.Name.Name
		}

		if resolver != nil {
			info.PackageName, _ = resolver.GetPackageName(importPath)
		}
		if info.PackageName == "" {
			info.PackageName = pkgresolver.GuessPackageName(importPath)
		}

		imports[info.Qualifier()] = info
	}

	return imports
}

// collectQualifiers 收集类型表达式中出现的包限定符
func collectQualifiers(expr ast.Expr) []string {
	var qualifiers []string
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && !seen[ident.Name] {
			seen[ident.Name] = true
			qualifiers = append(qualifiers, ident.Name)
		}
		return false
	})
	return qualifiers
}

// headQualifier 返回类型头部的限定符，如 *mo.Option[T] 返回 mo
func headQualifier(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.SelectorExpr:
			if ident, ok := e.X.(*ast.Ident); ok {
				return ident.Name
			}
			return ""
		default:
			return ""
		}
	}
}
