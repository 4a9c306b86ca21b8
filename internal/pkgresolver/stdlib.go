package pkgresolver

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
)

// goroot 标准库所在的 GOROOT
func goroot() string {
	if root := build.Default.GOROOT; root != "" {
		return root
	}
	return os.Getenv("GOROOT")
}

// IsStdLib 判断导入路径是否属于标准库
// 第一段包含 '.' 的路径一定不是标准库，其余以 GOROOT/src 中是否存在目录为准
func IsStdLib(importPath string) bool {
	if importPath == "" {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	if strings.Contains(first, ".") {
		return false
	}
	root := goroot()
	if root == "" {
		// 无 GOROOT 时只能按路径形状判断
		return true
	}
	info, err := os.Stat(stdLibDir(root, importPath))
	return err == nil && info.IsDir()
}

func stdLibDir(root, importPath string) string {
	return filepath.Join(root, "src", filepath.FromSlash(importPath))
}
