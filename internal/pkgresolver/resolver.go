package pkgresolver

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// Resolver 将导入路径解析为真实包名
//
//	"fmt"                  → "fmt"
//	"net/http"             → "http"
//	"github.com/samber/mo" → "mo"
//	".../testdata/gg"      → "g2" (package 声明为 g2)
type Resolver struct {
	projectRoot string
	modulePath  string
	modCache    string

	names *cache[string, string]
}

// New 创建解析器，projectRoot 为包含 go.mod 的目录，可以为空
func New(projectRoot string) *Resolver {
	r := &Resolver{
		projectRoot: projectRoot,
		modCache:    moduleCacheDir(),
		names:       newCache[string, string](),
	}
	if projectRoot != "" {
		r.modulePath, _ = ReadModulePath(projectRoot)
	}
	return r
}

// ModulePath 返回项目的模块路径
func (r *Resolver) ModulePath() string {
	return r.modulePath
}

// GetPackageName 获取导入路径对应的真实包名
// 无法在磁盘上找到包时退化为路径最后一段（去掉 .vN 与 gopkg.in 风格的版本后缀）
func (r *Resolver) GetPackageName(importPath string) (string, error) {
	if importPath == "" {
		return "", fmt.Errorf("导入路径为空")
	}
	if name, ok := r.names.get(importPath); ok {
		return name, nil
	}

	name := GuessPackageName(importPath)
	if dir, err := r.ResolveDir(importPath); err == nil {
		if real, err := ReadPackageName(dir); err == nil {
			name = real
		}
	}

	r.names.set(importPath, name)
	return name, nil
}

// ResolveDir 将导入路径解析为磁盘目录
func (r *Resolver) ResolveDir(importPath string) (string, error) {
	if IsStdLib(importPath) {
		if root := goroot(); root != "" {
			return stdLibDir(root, importPath), nil
		}
	}

	if r.modulePath != "" {
		if importPath == r.modulePath {
			return r.projectRoot, nil
		}
		if rest, ok := strings.CutPrefix(importPath, r.modulePath+"/"); ok {
			return filepath.Join(r.projectRoot, filepath.FromSlash(rest)), nil
		}
	}

	return r.findInModCache(importPath)
}

// findInModCache 在 GOMODCACHE 中从最长前缀开始查找模块
func (r *Resolver) findInModCache(importPath string) (string, error) {
	if r.modCache == "" {
		return "", fmt.Errorf("未找到模块缓存目录")
	}

	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1; i-- {
		modPath := strings.Join(parts[:i], "/")
		escaped, err := module.EscapePath(modPath)
		if err != nil {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(r.modCache, filepath.FromSlash(escaped)+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		// 同一模块存在多个版本时取字典序最大的
		slices.Sort(matches)
		dir := matches[len(matches)-1]
		if i < len(parts) {
			dir = filepath.Join(dir, filepath.Join(parts[i:]...))
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// ReadModulePath 读取 go.mod 中的模块路径
func ReadModulePath(projectRoot string) (string, error) {
	content, err := os.ReadFile(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return "", err
	}
	modPath := modfile.ModulePath(content)
	if modPath == "" {
		return "", fmt.Errorf("未在 go.mod 中找到模块名称")
	}
	return modPath, nil
}

// GuessPackageName 根据导入路径推测包名
//
//	github.com/a/b/v2   → b
//	gopkg.in/yaml.v3    → yaml
//	github.com/a/go-foo → go-foo（调用方需自行检查是否为合法标识符）
func GuessPackageName(importPath string) string {
	base := path.Base(importPath)
	if prefix, _, ok := module.SplitPathVersion(importPath); ok && prefix != importPath {
		if strings.HasPrefix(base, "v") && !strings.Contains(base, ".") {
			base = path.Base(prefix)
		}
	}
	if name, _, found := strings.Cut(base, ".v"); found && name != "" {
		base = name
	}
	return base
}

func moduleCacheDir() string {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		gopath = filepath.Join(home, "go")
	}
	// GOPATH 可能包含多个目录，模块缓存位于第一个
	gopath = filepath.SplitList(gopath)[0]
	return filepath.Join(gopath, "pkg", "mod")
}
