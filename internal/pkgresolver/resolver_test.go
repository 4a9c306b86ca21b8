package pkgresolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestProject 创建一个临时模块：
//
//	example.com/proj/gg         → package g2
//	example.com/proj/aliasedpkg → package aliasedpkg
func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/proj\n\ngo 1.25\n")
	writeFile(t, filepath.Join(root, "gg", "type.go"), "package g2\n\ntype Type struct{}\n")
	writeFile(t, filepath.Join(root, "gg", "type_test.go"), "package g2_test\n")
	writeFile(t, filepath.Join(root, "aliasedpkg", "a.go"), "package aliasedpkg\n\ntype SomeType int\n")
	return root
}

func TestIsStdLib(t *testing.T) {
	tests := []struct {
		importPath string
		want       bool
	}{
		{"fmt", true},
		{"net/http", true},
		{"encoding/json", true},
		{"github.com/samber/lo", false},
		{"gorm.io/datatypes", false},
		{"example.com/proj/gg", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.importPath, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStdLib(tt.importPath))
		})
	}
}

func TestResolver_StdLib(t *testing.T) {
	r := New("")

	for importPath, want := range map[string]string{
		"fmt":           "fmt",
		"net/http":      "http",
		"encoding/json": "json",
		"math/rand/v2":  "rand",
	} {
		t.Run(importPath, func(t *testing.T) {
			name, err := r.GetPackageName(importPath)
			require.NoError(t, err)
			assert.Equal(t, want, name)
		})
	}
}

func TestResolver_ProjectInternal(t *testing.T) {
	root := newTestProject(t)
	r := New(root)
	assert.Equal(t, "example.com/proj", r.ModulePath())

	t.Run("包名与目录名不一致", func(t *testing.T) {
		name, err := r.GetPackageName("example.com/proj/gg")
		require.NoError(t, err)
		assert.Equal(t, "g2", name)
	})

	t.Run("包名与目录名一致", func(t *testing.T) {
		name, err := r.GetPackageName("example.com/proj/aliasedpkg")
		require.NoError(t, err)
		assert.Equal(t, "aliasedpkg", name)
	})

	t.Run("目录不存在时退化为路径最后一段", func(t *testing.T) {
		name, err := r.GetPackageName("example.com/proj/missing")
		require.NoError(t, err)
		assert.Equal(t, "missing", name)
	})

	t.Run("模块根目录", func(t *testing.T) {
		dir, err := r.ResolveDir("example.com/proj")
		require.NoError(t, err)
		assert.Equal(t, root, dir)
	})
}

func TestResolver_ModCache(t *testing.T) {
	modCache := t.TempDir()
	t.Setenv("GOMODCACHE", modCache)
	writeFile(t, filepath.Join(modCache, "github.com", "!xuanwo", "gg@v1.0.0", "sub", "x.go"), "package old\n")
	writeFile(t, filepath.Join(modCache, "github.com", "!xuanwo", "gg@v1.2.0", "sub", "x.go"), "package sub2\n")

	r := New("")
	dir, err := r.ResolveDir("github.com/Xuanwo/gg/sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(modCache, "github.com", "!xuanwo", "gg@v1.2.0", "sub"), dir)

	name, err := r.GetPackageName("github.com/Xuanwo/gg/sub")
	require.NoError(t, err)
	assert.Equal(t, "sub2", name)

	_, err = r.ResolveDir("github.com/unknown/pkg")
	assert.Error(t, err)
}

func TestResolver_Cache(t *testing.T) {
	root := newTestProject(t)
	r := New(root)

	first, err := r.GetPackageName("example.com/proj/gg")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "gg")))

	second, err := r.GetPackageName("example.com/proj/gg")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.names.len())
}

func TestResolver_EmptyPath(t *testing.T) {
	_, err := New("").GetPackageName("")
	assert.Error(t, err)
}

func TestGuessPackageName(t *testing.T) {
	tests := map[string]string{
		"github.com/samber/mo":             "mo",
		"github.com/bmatcuk/doublestar/v4": "doublestar",
		"gopkg.in/yaml.v3":                 "yaml",
		"net/http":                         "http",
		"fmt":                              "fmt",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, GuessPackageName(input))
		})
	}
}

func TestReadPackageName(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadPackageName(dir)
	assert.ErrorContains(t, err, "没有找到 Go 源文件")

	writeFile(t, filepath.Join(dir, "a_test.go"), "package x_test\n")
	writeFile(t, filepath.Join(dir, "doc.go"), "package documentation\n")
	writeFile(t, filepath.Join(dir, "z.go"), "package realname\n")

	name, err := ReadPackageName(dir)
	require.NoError(t, err)
	assert.Equal(t, "realname", name)

	_, err = ReadPackageName(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestReadModulePath(t *testing.T) {
	root := newTestProject(t)
	modPath, err := ReadModulePath(root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/proj", modPath)

	empty := t.TempDir()
	writeFile(t, filepath.Join(empty, "go.mod"), "go 1.25\n")
	_, err = ReadModulePath(empty)
	assert.Error(t, err)
}
