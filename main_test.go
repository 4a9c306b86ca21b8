package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/donutnomad/accessorgen/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "user.go"), `package models

// @Getters
type User struct {
	name string
}
`)
	writeFile(t, filepath.Join(dir, "accessorgen.yaml"), "variants:\n  getters:\n    default_prefix: get\n")

	cmd := rootCmd()
	cmd.SetArgs([]string{"gen", "--config", filepath.Join(dir, "accessorgen.yaml"), "--log-level", "disabled", dir})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	out, err := os.ReadFile(filepath.Join(dir, "user_accessor.go"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "func (u User) GetName() string {")
}

func TestRootCommandErrors(t *testing.T) {
	t.Run("非法日志级别", func(t *testing.T) {
		cmd := rootCmd()
		cmd.SetArgs([]string{"--log-level", "loud", t.TempDir()})
		assert.ErrorContains(t, cmd.ExecuteContext(context.Background()), "未知的日志级别")
	})

	t.Run("配置校验失败", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "accessorgen.yaml")
		writeFile(t, path, "variants:\n  unknown: {}\n")

		cmd := rootCmd()
		cmd.SetArgs([]string{"--config", path, "--log-level", "disabled", t.TempDir()})
		assert.ErrorContains(t, cmd.ExecuteContext(context.Background()), "配置校验失败")
	})

	t.Run("生成错误", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "foo.go"), `package models

// @BuilderSetters
type Foo struct {
	bar uint16 // @BuilderSetter(visibility="zzz")
}
`)
		cmd := rootCmd()
		cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "--log-level", "disabled", dir})
		err := cmd.ExecuteContext(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zzz")
	})
}

func TestOutputPath(t *testing.T) {
	cfg := &config.Config{Output: "cfg_out"}

	assert.Equal(t, "cfg_out", (&globalOptions{}).outputPath(cfg))
	assert.Equal(t, "cli_out", (&globalOptions{output: "cli_out"}).outputPath(cfg))
	assert.Empty(t, (&globalOptions{output: "cli_out", noOutput: true}).outputPath(cfg))
}

func TestDefaultPatterns(t *testing.T) {
	assert.Equal(t, []string{"./..."}, defaultPatterns(nil))
	assert.Equal(t, []string{"./models/..."}, defaultPatterns([]string{"./models/..."}))
}

func TestAnnotationHelp(t *testing.T) {
	help := annotationHelp()
	for _, want := range []string{"@BuilderSetters", "@BasicSetters", "@Setters", "@AddSetters", "@Getters", "$FILE"} {
		assert.Contains(t, help, want)
	}
}

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "a", "b", "b.go"), "package b\n")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref\n")
	writeFile(t, filepath.Join(root, "testdata", "x.go"), "package x\n")

	dirs, err := collectWatchDirs([]string{root + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, dirs)

	dirs, err = collectWatchDirs([]string{filepath.Join(root, "a"), filepath.Join(root, "a")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a")}, dirs)

	_, err = collectWatchDirs([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestDevGenerate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "item.go")
	writeFile(t, src, `package models

// @BasicSetters
type Item struct {
	count int
}
`)

	e, err := (&globalOptions{configPath: filepath.Join(dir, "missing.yaml"), logLevel: "disabled"}).env()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &devRunner{
		opts:        &DevOptions{Debounce: 10 * time.Millisecond},
		registry:    e.registry,
		log:         e.log,
		ctx:         ctx,
		pendingDirs: make(map[string]*time.Timer),
	}
	runner.scheduleGenerate(dir)
	runner.scheduleGenerate(dir)

	out := filepath.Join(dir, "item_accessor.go")
	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(code), "func (i *Item) SetCount(count int) {")
}
