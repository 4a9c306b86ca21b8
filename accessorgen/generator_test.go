package accessorgen

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/donutnomad/accessorgen/internal/config"
	"github.com/donutnomad/accessorgen/plugin"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newRegistry(t *testing.T, cfg *config.Config) *plugin.Registry {
	t.Helper()
	gens, err := NewGenerators(cfg)
	require.NoError(t, err)

	registry := plugin.NewRegistry()
	for _, gen := range gens {
		require.NoError(t, registry.Register(gen))
	}
	return registry
}

// generate 在临时目录中写入源文件并执行生成，返回生成文件内容
func generate(t *testing.T, cfg *config.Config, source string) (string, error) {
	t.Helper()
	_, code, err := generateInDir(t, cfg, source)
	return code, err
}

func generateInDir(t *testing.T, cfg *config.Config, source string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.go"), source)

	err := plugin.RunWithOptions(context.Background(), &plugin.RunOptions{
		Registry: newRegistry(t, cfg),
		Patterns: []string{dir},
	})

	out, readErr := os.ReadFile(filepath.Join(dir, "models_accessor.go"))
	if readErr != nil {
		return dir, "", err
	}
	return dir, string(out), err
}

// moStub 类型检查时代替 github.com/samber/mo 的最小声明
const moStub = `package mo

type Option[T any] struct {
	value   T
	present bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}
`

// stubImporter 优先使用内置的桩包，其余交给源码导入器
type stubImporter struct {
	fset     *token.FileSet
	stubs    map[string]string
	pkgs     map[string]*types.Package
	fallback types.Importer
}

func (s *stubImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := s.pkgs[path]; ok {
		return pkg, nil
	}
	src, ok := s.stubs[path]
	if !ok {
		return s.fallback.Import(path)
	}
	file, err := parser.ParseFile(s.fset, path+"/stub.go", src, 0)
	if err != nil {
		return nil, err
	}
	pkg, err := (&types.Config{Importer: s}).Check(path, s.fset, []*ast.File{file}, nil)
	if err != nil {
		return nil, err
	}
	s.pkgs[path] = pkg
	return pkg, nil
}

// assertCompiles 对源文件和生成文件一起做类型检查
func assertCompiles(t *testing.T, dir string) {
	t.Helper()
	fset := token.NewFileSet()
	var files []*ast.File
	for _, name := range []string{"models.go", "models_accessor.go"} {
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		require.NoError(t, err)
		files = append(files, file)
	}

	conf := types.Config{Importer: &stubImporter{
		fset:     fset,
		stubs:    map[string]string{"github.com/samber/mo": moStub},
		pkgs:     make(map[string]*types.Package),
		fallback: importer.ForCompiler(fset, "source", nil),
	}}
	_, err := conf.Check("models", fset, files, nil)
	require.NoError(t, err, "生成的代码未通过类型检查")
}

// funcLines 提取生成代码中的方法签名行
func funcLines(code string) []string {
	return lo.Filter(strings.Split(code, "\n"), func(line string, _ int) bool {
		return strings.HasPrefix(line, "func (")
	})
}

func assertLines(t *testing.T, want, got []string) {
	t.Helper()
	if slices.Equal(want, got) {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(want, "\n") + "\n"),
		B:        difflib.SplitLines(strings.Join(got, "\n") + "\n"),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	t.Errorf("生成的方法不一致:\n%s", diff)
}

const fooSource = `package models

// Foo 示例
// @BuilderSetters
type Foo struct {
	bar uint16
	baz string
	// @DisableBuilderSetters
	foobar bool
	foobaz bool // @BuilderSetter(suffix="fb")
}
`

func TestGenerateBuilderSetters(t *testing.T) {
	dir, code, err := generateInDir(t, nil, fooSource)
	require.NoError(t, err)
	assertCompiles(t, dir)

	assert.Contains(t, code, plugin.GeneratedHeader)
	assert.Contains(t, code, "================ buildersetters ================")
	assertLines(t, []string{
		"func (f Foo) WithBar(bar uint16) Foo {",
		"func (f Foo) WithBaz(baz string) Foo {",
		"func (f Foo) WithFb(foobaz bool) Foo {",
	}, funcLines(code))
	assert.Contains(t, code, "// WithBar 设置 bar 并返回修改后的副本")
	assert.Contains(t, code, "f.bar = uint16(bar)")
	assert.Contains(t, code, "f.foobaz = bool(foobaz)")
	assert.NotContains(t, code, "foobar")
}

func TestGenerateIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.go"), fooSource)
	opts := &plugin.RunOptions{Registry: newRegistry(t, nil), Patterns: []string{dir}}

	require.NoError(t, plugin.RunWithOptions(context.Background(), opts))
	first, err := os.ReadFile(filepath.Join(dir, "models_accessor.go"))
	require.NoError(t, err)

	// 再次运行时生成文件本身不含注解，源文件的结果保持不变
	stats, err := plugin.RunWithOptionsAndStats(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TargetCount)

	second, err := os.ReadFile(filepath.Join(dir, "models_accessor.go"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerateOptionalWrapper(t *testing.T) {
	dir, code, err := generateInDir(t, nil, `package models

import "github.com/samber/mo"

// @BuilderSetters
type Profile struct {
	nick mo.Option[string]
	// @BuilderSetter(with_into=false)
	age mo.Option[int]
	// @BuilderSetter(name="with_nick_option")
	// @BuilderSetter(name="set_raw", visibility="private")
	raw *mo.Option[string]
}
`)
	require.NoError(t, err)

	assertLines(t, []string{
		"func (p Profile) WithNick(nick string) Profile {",
		"func (p Profile) WithAge(age int) Profile {",
		"func (p Profile) WithNickOption(raw *mo.Option[string]) Profile {",
		"func (p Profile) setRaw(raw *mo.Option[string]) Profile {",
	}, funcLines(code))
	assert.Contains(t, code, `"github.com/samber/mo"`)
	assert.Contains(t, code, "p.nick = mo.Some(string(nick))")
	assert.Contains(t, code, "p.age = mo.Some(age)")
	assert.Contains(t, code, "p.raw = (*mo.Option[string])(raw)")
	assertCompiles(t, dir)
}

func TestGenerateQualifierNamedFields(t *testing.T) {
	dir, code, err := generateInDir(t, nil, `package models

import (
	"log"
	"net/url"
	"time"

	"github.com/samber/mo"
)

// @BuilderSetters
// @BasicSetters
type Job struct {
	time time.Time
	log  *log.Logger
	url  url.URL
	mo   mo.Option[string]
}
`)
	require.NoError(t, err)

	assertLines(t, []string{
		"func (j Job) WithTime(timeVal time.Time) Job {",
		"func (j Job) WithLog(logVal *log.Logger) Job {",
		"func (j Job) WithURL(urlVal url.URL) Job {",
		"func (j Job) WithMo(moVal string) Job {",
		"func (j *Job) SetTime(timeVal time.Time) {",
		"func (j *Job) SetLog(logVal *log.Logger) {",
		"func (j *Job) SetURL(urlVal url.URL) {",
		"func (j *Job) SetMo(moVal string) {",
	}, funcLines(code))
	assert.Contains(t, code, "j.time = time.Time(timeVal)")
	assert.Contains(t, code, "j.log = (*log.Logger)(logVal)")
	assert.Contains(t, code, "j.mo = mo.Some(string(moVal))")
	assertCompiles(t, dir)
}

func TestGenerateVariants(t *testing.T) {
	dir, code, err := generateInDir(t, nil, `package models

// Box 泛型容器
// @BasicSetters
// @Getters
type Box[T any, K comparable] struct {
	// @GetterRefStrategy = "ref"
	value T
	// @BasicSetter(visibility="private")
	// @GetterName = "label"
	name string
	// @DisableBasicSetters
	// @DisableGetter
	key K
}
`)
	require.NoError(t, err)

	assertLines(t, []string{
		"func (b *Box[T, K]) SetValue(value T) {",
		"func (b *Box[T, K]) setName(name string) {",
		"func (b *Box[T, K]) Value() *T {",
		"func (b Box[T, K]) Label() string {",
	}, funcLines(code))
	assert.Less(t, strings.Index(code, "basicsetters"), strings.Index(code, "getters"))
	assert.Contains(t, code, "b.value = T(value)")
	assert.Contains(t, code, "return &b.value")
	assert.Contains(t, code, "// Value 返回 value 的指针")
	assertCompiles(t, dir)
}

func TestGenerateSettersVariants(t *testing.T) {
	code, err := generate(t, nil, `package models

// @Setters
type Order struct {
	// @ConfigureSetter(name="first")
	// @ConfigureSetter(prefix="put")
	id int64
}

// @AddSetters
type Item struct {
	// @SetterPrefix = "set"
	// @SetterSuffix = "sku"
	code string
	// @DisableSetter
	hidden bool
}
`)
	require.NoError(t, err)

	assertLines(t, []string{
		"func (o Order) PutID(id int64) Order {",
		"func (i Item) SetSku(code string) Item {",
	}, funcLines(code))
	assert.Less(t, strings.Index(code, "================ setters"), strings.Index(code, "================ addsetters"))
}

func TestGenerateReceiver(t *testing.T) {
	code, err := generate(t, nil, `package models

// @BuilderSetters(receiver=self)
type User struct {
	name string
}

// @BuilderSetters
type Unit struct {
	u int
}
`)
	require.NoError(t, err)

	assertLines(t, []string{
		"func (u Unit) WithU(uVal int) Unit {",
		"func (self User) WithName(name string) User {",
	}, funcLines(code))
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr []string
	}{
		{
			name: "非法可见性",
			source: `package models

// @BuilderSetters
type Foo struct {
	// @BuilderSetter(visibility="zzz")
	bar uint16
}
`,
			wantErr: []string{"Foo.bar", `invalid visibility "zzz"`, "pub, pub(crate), private"},
		},
		{
			name: "非结构体",
			source: `package models

// @Getters
type ID int
`,
			wantErr: []string{"`Getters` only supports structs with named fields"},
		},
		{
			name: "嵌入字段",
			source: `package models

type Base struct{}

// @Getters
type User struct {
	Base
	name string
}
`,
			wantErr: []string{"User: `Getters` only supports structs with named fields"},
		},
		{
			name: "未知参数",
			source: `package models

// @BasicSetters
type Foo struct {
	bar uint16 // @BasicSetter(ref_strategy="ref")
}
`,
			wantErr: []string{"unexpected parameter `ref_strategy`"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := generate(t, nil, tt.source)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
			// 出错的记录不产生任何输出
			assert.Empty(t, code)
		})
	}
}

func TestGenerateWithConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
variants:
  getters:
    default_prefix: get
    suffix_policy: independent
optional_wrappers:
  - name: Maybe
    constructor: Just
`))
	require.NoError(t, err)

	code, err := generate(t, cfg, `package models

// @Getters
// @BuilderSetters
type Conf struct {
	// @GetterSuffix = "port"
	httpPort int
	level Maybe[int]
}
`)
	require.NoError(t, err)

	assertLines(t, []string{
		"func (c Conf) WithHttpPort(httpPort int) Conf {",
		"func (c Conf) WithLevel(level int) Conf {",
		"func (c Conf) GetPort() int {",
		"func (c Conf) GetLevel() Maybe[int] {",
	}, funcLines(code))
	assert.Contains(t, code, "c.level = Just(int(level))")
}

func TestNewGenerators(t *testing.T) {
	gens, err := NewGenerators(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"buildersetters", "basicsetters", "setters", "addsetters", "getters"},
		lo.Map(gens, func(g *AccessorGenerator, _ int) string { return g.Name() }))
	assert.Equal(t, []int{10, 20, 30, 40, 50},
		lo.Map(gens, func(g *AccessorGenerator, _ int) int { return g.Priority() }))

	assert.Equal(t, []string{
		"@BuilderSetter(name, prefix, suffix, visibility, with_into)",
		"@DisableBuilderSetters",
	}, gens[0].FieldAnnotations())
	assert.Contains(t, gens[4].FieldAnnotations(), `@GetterRefStrategy = "<ref_strategy>"`)

	help := plugin.FormatHelpText(newRegistry(t, nil))
	assert.Contains(t, help, "@Getters - getters")
	assert.Contains(t, help, "receiver - 接收者变量名")
}
