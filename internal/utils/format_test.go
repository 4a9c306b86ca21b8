package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFormat(t *testing.T) {
	t.Run("格式化并移除未使用的导入", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a_accessor.go")
		src := "package a\nimport \"strings\"\nfunc (u User) Name() string {\nreturn u.name}\n"

		require.NoError(t, WriteFormat(path, []byte(src)))

		out, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "strings")
		assert.Contains(t, string(out), "\treturn u.name\n}")
	})

	t.Run("语法错误时写入原始代码", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "b_accessor.go")
		src := "package b\nfunc broken( {\n"

		err := WriteFormat(path, []byte(src))
		require.Error(t, err)

		out, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, src, string(out))
	})
}

func TestCheckSyntax(t *testing.T) {
	assert.NoError(t, CheckSyntax("ok.go", []byte("package a\n\nfunc F() {}\n")))
	assert.Error(t, CheckSyntax("bad.go", []byte("package a\n\nfunc F( {\n")))
}
