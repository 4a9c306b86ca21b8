package pkgresolver

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ReadPackageName 读取目录中 Go 源文件的 package 声明
// 跳过测试文件，按文件名顺序取第一个可解析的声明
func ReadPackageName(pkgDir string) (string, error) {
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", pkgDir, err)
	}

	var goFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		goFiles = append(goFiles, name)
	}
	if len(goFiles) == 0 {
		return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", pkgDir)
	}
	slices.Sort(goFiles)

	var lastErr error
	for _, name := range goFiles {
		pkgName, err := readPackageClause(filepath.Join(pkgDir, name))
		if err != nil {
			lastErr = err
			continue
		}
		// package documentation 只用于文档
		if pkgName == "documentation" {
			continue
		}
		return pkgName, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("目录 %s 中没有有效的 package 声明", pkgDir)
	}
	return "", lastErr
}

func readPackageClause(filename string) (string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.PackageClauseOnly)
	if err != nil {
		return "", fmt.Errorf("解析文件 %s 失败: %w", filename, err)
	}
	return f.Name.Name, nil
}
