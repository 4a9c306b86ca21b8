package plugin

import (
	"bufio"
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/donutnomad/accessorgen/internal/logger"
)

// ConfigKeyword 包级配置注释的关键字
const ConfigKeyword = "go:accessorgen:"

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	log     logger.Logger

	annotationFilter []string
	excludes         []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerLogger(l logger.Logger) ScannerOption {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

// WithExcludePatterns 设置排除的文件模式（doublestar 语法，如 **/mocks/**）
// 模式同时匹配相对扫描根目录的路径和文件名
func WithExcludePatterns(patterns ...string) ScannerOption {
	return func(s *Scanner) {
		for _, p := range patterns {
			s.excludes = append(s.excludes, filepath.ToSlash(p))
		}
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解名
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(allFiles) == 0 {
		return &ScanResult{}, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matched := parallelMap(ctx, s.workers, allFiles, func(file string) (string, bool) {
		ok, err := s.QuickMatchFile(file)
		return file, err == nil && ok
	})
	if len(matched) == 0 {
		return &ScanResult{}, ctx.Err()
	}
	slices.Sort(matched)

	// ========== 第二阶段：AST 解析 ==========
	parsed := parallelMap(ctx, s.workers, matched, func(file string) (*fileScan, bool) {
		r, err := s.parseFile(file)
		if err != nil {
			s.log.Warn("解析文件失败", "file", file, "error", err)
			return nil, false
		}
		return r, true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 按文件路径排序，保证结果稳定
	slices.SortFunc(parsed, func(a, b *fileScan) int {
		return strings.Compare(a.path, b.path)
	})

	result := &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}
	for _, r := range parsed {
		result.Structs = append(result.Structs, r.structs...)
		result.Types = append(result.Types, r.types...)
		if r.pkgConfig != nil {
			s.mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	return result, nil
}

// parallelMap 使用 workers 个 goroutine 处理 items，保留 ok 为 true 的结果
func parallelMap[T, R any](ctx context.Context, workers int, items []T, fn func(T) (R, bool)) []R {
	type item struct {
		value R
		ok    bool
	}

	in := make(chan T)
	out := make(chan item, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range in {
				r, ok := fn(v)
				out <- item{value: r, ok: ok}
			}
		}()
	}

	go func() {
		defer close(in)
		for _, v := range items {
			select {
			case <-ctx.Done():
				return
			case in <- v:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	var results []R
	for r := range out {
		if r.ok {
			results = append(results, r.value)
		}
	}
	return results
}

// mergePackageConfig 合并同一包内多个文件的配置，后发现的配置覆盖先前的
func (s *Scanner) mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	existing, ok := configs[cfg.PackageDir]
	if !ok {
		configs[cfg.PackageDir] = cfg
		return
	}

	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			s.log.Warn("包中存在多个不同的默认输出配置，使用后发现的配置", "package", cfg.PackageDir)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if old, ok := existing.PluginOutputs[k]; ok && old != v {
			s.log.Warn("插件存在多个不同的输出配置，使用后发现的配置", "package", cfg.PackageDir, "plugin", k)
		}
		existing.PluginOutputs[k] = v
	}
}

// QuickMatchFile 快速检查文件是否包含注解或包级配置
// 也用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		// 注解可能写在行首注释或字段行尾注释中
		idx := strings.Index(line, "//")
		if idx < 0 {
			idx = strings.Index(line, "/*")
		}
		if idx < 0 {
			continue
		}
		comment := line[idx:]

		if strings.Contains(comment, ConfigKeyword) {
			return true, nil
		}

		for _, match := range quickMatchRegex.FindAllStringSubmatch(comment, -1) {
			if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, sc.Err()
}

// fileScan 单个文件的解析结果
type fileScan struct {
	path      string
	structs   []*AnnotatedTarget
	types     []*AnnotatedTarget
	pkgConfig *PackageConfig
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (*fileScan, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	result := &fileScan{path: filePath}
	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		d, ok := decl.(*ast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			continue
		}
		s.parseTypeDecl(filePath, file.Name.Name, d, result)
	}

	return result, nil
}

// parseTypeDecl 解析类型声明
// 注解既可以写在 type 关键字之前，也可以写在分组声明中的单个类型之前
func (s *Scanner) parseTypeDecl(filePath, packageName string, decl *ast.GenDecl, result *fileScan) {
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		doc := typeSpec.Doc
		if doc == nil && len(decl.Specs) == 1 {
			doc = decl.Doc
		}
		if doc == nil {
			continue
		}

		annotations := ParseAnnotations(doc.Text())
		if len(s.annotationFilter) > 0 {
			annotations = FilterByNames(annotations, s.annotationFilter...)
		}
		if len(annotations) == 0 {
			continue
		}

		target := &Target{
			Name:        typeSpec.Name.Name,
			PackageName: packageName,
			FilePath:    filePath,
			Position:    typeSpec.Pos(),
			Node:        typeSpec,
		}
		at := &AnnotatedTarget{Target: target, Annotations: annotations}

		switch typeSpec.Type.(type) {
		case *ast.StructType:
			target.Kind = TargetStruct
			result.structs = append(result.structs, at)
		case *ast.InterfaceType:
			// 接口没有字段，不是访问器的目标
		default:
			target.Kind = TargetType
			result.types = append(result.types, at)
		}
	}
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(root, path string) {
		if seen[path] || s.isExcluded(root, path) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		pattern = strings.TrimSuffix(pattern, "/...")

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(filepath.Dir(absPath), absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != absPath && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" || !recursive) {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSourceFile(path) {
				add(absPath, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsSourceFile 判断是否是需要扫描的源文件（排除测试文件和生成的文件）
func IsSourceFile(path string) bool {
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!strings.HasSuffix(path, "_accessor.go")
}

// isExcluded 检查文件是否匹配排除模式
func (s *Scanner) isExcluded(root, path string) bool {
	if len(s.excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pattern := range s.excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// configRegex 匹配包级配置指令，支持 //go:accessorgen: 和 // go:accessorgen:
var configRegex = regexp.MustCompile(regexp.QuoteMeta(ConfigKeyword) + `\s*(.*)`)

// parsePackageConfig 解析包级配置
// 支持格式:
//
//	//go:accessorgen: -output `$FILE_accessor`
//	// go:accessorgen: plugin:getters -output `getters` plugin:buildersetters -output `builders`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if !strings.HasPrefix(text, ConfigKeyword) {
				continue
			}
			if matches := configRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}
	if len(lines) > 1 {
		s.log.Warn("文件定义了多个包级配置指令，将被忽略", "file", filePath)
		return nil
	}

	return parseConfigLine(lines[0], filePath)
}

// parseConfigLine 解析单行包级配置
// 格式:
//
//	-output `xxx`                                              // 默认输出
//	plugin:getters -output `xxx` plugin:buildersetters -output `yyy` // 插件特定输出
func parseConfigLine(line string, filePath string) *PackageConfig {
	config := &PackageConfig{
		PackageDir:    filepath.Dir(filePath),
		PluginOutputs: make(map[string]string),
	}

	parts := splitConfigArgs(strings.TrimSpace(line))

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		switch part := parts[i]; {
		case strings.HasPrefix(part, "plugin:"):
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		case part == "-output" && i+1 < len(parts):
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}

	return config
}

// splitConfigArgs 按空白分割参数，引号内的空格保留
func splitConfigArgs(line string) []string {
	var parts []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && (c == '`' || c == '"' || c == '\''):
			quote = c
			current.WriteByte(c)
		case quote != 0 && c == quote:
			quote = 0
			current.WriteByte(c)
		case quote == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// trimQuotes 去除成对的引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
