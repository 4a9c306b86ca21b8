package accessorgen

import (
	"go/ast"
	"go/types"
	"slices"

	"github.com/donutnomad/accessorgen/accessor"
	"github.com/donutnomad/accessorgen/internal/pkgresolver"
	"github.com/donutnomad/accessorgen/internal/structparse"
	"github.com/donutnomad/accessorgen/plugin"
	"github.com/samber/lo"
)

// Source 一个待扩展的记录及其所在文件的导入信息
type Source struct {
	Record   *accessor.Record
	FilePath string

	imports    map[string]*structparse.ImportInfo
	qualifiers map[string][]string // 字段名 → 类型中出现的包限定符
}

// Import 生成文件需要的导入
type Import struct {
	Path  string
	Alias string // 为空时使用包名
}

// BuildRecord 将解析出的类型声明转换为记录
func BuildRecord(info *structparse.StructInfo) *Source {
	rec := &accessor.Record{
		Name:        info.Name,
		PackageName: info.PackageName,
		Shape:       accessor.ShapeNamed,
		TypeParams: lo.Map(info.TypeParams, func(p structparse.TypeParamInfo, _ int) accessor.TypeParam {
			return accessor.TypeParam{Name: p.Name, Constraint: p.Constraint}
		}),
	}
	src := &Source{
		Record:     rec,
		FilePath:   info.FilePath,
		imports:    info.Imports,
		qualifiers: make(map[string][]string, len(info.Fields)),
	}

	switch {
	case !info.IsStruct:
		rec.Shape = accessor.ShapeNotStruct
	case lo.ContainsBy(info.Fields, func(f structparse.FieldInfo) bool { return f.Embedded }):
		rec.Shape = accessor.ShapeEmbedded
	}

	for _, f := range info.Fields {
		rec.Fields = append(rec.Fields, &accessor.Field{
			Name:        f.Name,
			Type:        typeExpr(f.Expr),
			Annotations: plugin.ParseAnnotations(f.Doc + "\n" + f.Comment),
		})
		src.qualifiers[f.Name] = f.Qualifiers
	}
	return src
}

// Imports 返回方法用到的导入，按首次出现的顺序
func (s *Source) Imports(methods []accessor.MethodSpec) []Import {
	var qualifiers []string
	for _, m := range methods {
		qualifiers = append(qualifiers, s.methodQualifiers(m)...)
	}

	var result []Import
	for _, q := range lo.Uniq(qualifiers) {
		info, ok := s.imports[q]
		if !ok {
			continue
		}
		imp := Import{Path: info.ImportPath, Alias: info.Alias}
		// 包名与导入路径推测的名字不一致时显式写出，避免生成文件依赖工具推断
		if imp.Alias == "" && info.PackageName != pkgresolver.GuessPackageName(info.ImportPath) {
			imp.Alias = info.PackageName
		}
		result = append(result, imp)
	}
	return result
}

// methodQualifiers 方法体中引用的包限定符：字段类型里的和包装构造函数的
func (s *Source) methodQualifiers(m accessor.MethodSpec) []string {
	qualifiers := s.qualifiers[m.Field]
	if m.Signature.Wrap == accessor.WrapInOptional && m.Signature.Qualifier != "" {
		qualifiers = append(slices.Clip(qualifiers), m.Signature.Qualifier)
	}
	return qualifiers
}

// typeExpr 将字段类型的 AST 转换为结构描述
func typeExpr(expr ast.Expr) accessor.TypeExpr {
	switch e := expr.(type) {
	case *ast.Ident:
		return accessor.Ident(e.Name)
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			return accessor.Named(x.Name, e.Sel.Name)
		}
	case *ast.IndexExpr:
		return genericType(e.X, []ast.Expr{e.Index})
	case *ast.IndexListExpr:
		return genericType(e.X, e.Indices)
	case *ast.ParenExpr:
		return typeExpr(e.X)
	case *ast.StarExpr:
		return accessor.Composite(accessor.TypePointer, types.ExprString(e))
	case *ast.ArrayType:
		if e.Len == nil {
			return accessor.Composite(accessor.TypeSlice, types.ExprString(e))
		}
		return accessor.Composite(accessor.TypeArray, types.ExprString(e))
	case *ast.MapType:
		return accessor.Composite(accessor.TypeMap, types.ExprString(e))
	case *ast.FuncType:
		return accessor.Composite(accessor.TypeFunc, types.ExprString(e))
	case *ast.ChanType:
		return accessor.Composite(accessor.TypeChan, types.ExprString(e))
	}
	return accessor.Composite(accessor.TypeOther, types.ExprString(expr))
}

func genericType(head ast.Expr, indices []ast.Expr) accessor.TypeExpr {
	base := typeExpr(head)
	if base.Kind != accessor.TypeNamed {
		return accessor.Composite(accessor.TypeOther, base.Text+"["+joinTypes(indices)+"]")
	}
	args := make([]accessor.TypeExpr, len(indices))
	for i, idx := range indices {
		args[i] = typeExpr(idx)
	}
	return accessor.Named(base.Qualifier, base.Name, args...)
}

func joinTypes(exprs []ast.Expr) string {
	return lo.Reduce(exprs, func(acc string, e ast.Expr, i int) string {
		if i > 0 {
			acc += ", "
		}
		return acc + types.ExprString(e)
	}, "")
}

// sortedPaths 按字典序返回 map 的 key
func sortedPaths[V any](m map[string]V) []string {
	paths := lo.Keys(m)
	slices.Sort(paths)
	return paths
}
