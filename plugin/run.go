package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/accessorgen/internal/logger"
	"github.com/donutnomad/accessorgen/internal/utils"
	"github.com/donutnomad/gg"
)

// GeneratedHeader 生成文件的头部注释
const GeneratedHeader = "Code generated by accessorgen. DO NOT EDIT."

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Excludes []string // 排除的文件模式（doublestar 语法）
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否并发执行生成器
	Logger   logger.Logger
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成文件数量
	Files            []string      // 生成的文件
}

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	_, err := RunWithOptionsAndStats(ctx, &RunOptions{Registry: registry, Patterns: patterns})
	return err
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		return nil, errors.New("未指定生成器注册表")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, errors.New("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithExcludePatterns(opts.Excludes...),
		WithScannerLogger(log),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	stats.TargetCount = len(result.All())
	if stats.TargetCount == 0 {
		log.Debug("没有找到任何带注解的目标")
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}
	log.Debug("扫描完成", "targets", stats.TargetCount, "duration", stats.ScanDuration)

	generateStart := time.Now()
	dispatch := registry.DispatchTargets(result)

	// 按优先级排序生成器
	gens := make([]Generator, 0, len(dispatch))
	for name := range dispatch {
		if gen, ok := registry.GetByName(name); ok {
			gens = append(gens, gen)
		}
	}
	slices.SortFunc(gens, compareGenerators)

	// 先串行解析所有目标的参数（避免并发修改共享数据）
	var allErrors []error
	for _, gen := range gens {
		for _, target := range dispatch[gen.Name()] {
			if err := bindParams(gen, target); err != nil {
				allErrors = append(allErrors, fmt.Errorf("%s: 解析 %s 的参数失败: %w", gen.Name(), target.Target.Name, err))
			}
		}
	}

	type genResultItem struct {
		result *GenerateResult
		err    error
	}

	execute := func(gen Generator) genResultItem {
		targets := dispatch[gen.Name()]
		log.Debug("执行生成器", "generator", gen.Name(), "targets", len(targets))

		start := time.Now()
		res, err := gen.Generate(&GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
			Logger:         log,
		})
		log.Debug("生成器完成", "generator", gen.Name(), "duration", time.Since(start))
		return genResultItem{result: res, err: err}
	}

	// 结果按生成器顺序存放，合并时保持优先级顺序
	items := make([]genResultItem, len(gens))
	if opts.Async {
		var wg sync.WaitGroup
		for i, gen := range gens {
			wg.Add(1)
			go func() {
				defer wg.Done()
				items[i] = execute(gen)
			}()
		}
		wg.Wait()
	} else {
		for i, gen := range gens {
			items[i] = execute(gen)
		}
	}

	// 收集所有 gg 定义，按输出路径分组
	fileDefinitions := make(map[string][]*gg.Generator)
	fileGenNames := make(map[string][]string)
	for i, gen := range gens {
		item := items[i]
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", gen.Name(), item.err))
			continue
		}
		if item.result == nil {
			continue
		}

		paths := make([]string, 0, len(item.result.Definitions))
		for path := range item.result.Definitions {
			paths = append(paths, path)
		}
		slices.Sort(paths)
		for _, path := range paths {
			fileDefinitions[path] = append(fileDefinitions[path], item.result.Definitions[path])
			fileGenNames[path] = append(fileGenNames[path], gen.Name())
		}

		allErrors = append(allErrors, item.result.Errors...)
	}

	// 合并同一文件的定义并写入
	outputPaths := make([]string, 0, len(fileDefinitions))
	for path := range fileDefinitions {
		outputPaths = append(outputPaths, path)
	}
	slices.Sort(outputPaths)

	for _, path := range outputPaths {
		merged, err := mergeDefinitionsWithSeparator(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		if err := writeGGFile(path, merged); err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		stats.FileCount++
		stats.Files = append(stats.Files, path)
		log.Info("生成文件", "path", path)
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if len(allErrors) > 0 {
		for _, e := range allErrors {
			log.Error(e.Error())
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误: %w", len(allErrors), errors.Join(allErrors...))
	}

	return stats, nil
}

// bindParams 将目标上属于该生成器的注解参数解析到参数结构体
func bindParams(gen Generator, target *AnnotatedTarget) error {
	proto := gen.NewParams()
	if proto == nil {
		return nil
	}
	val := reflect.ValueOf(proto)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("NewParams() 必须返回指针类型, 得到: %T", proto)
	}

	var ann *Annotation
	for _, name := range gen.Annotations() {
		if ann = GetAnnotation(target.Annotations, name); ann != nil {
			break
		}
	}
	if ann == nil {
		return nil
	}

	if err := ParseAnnotationParams(ann, proto, gen.ParamDefs()); err != nil {
		return err
	}
	target.ParsedParams = val.Elem().Interface()
	return nil
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并在每段前添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, errors.New("没有定义需要合并")
	}

	merged := gg.New()
	merged.SetHeader(GeneratedHeader)

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 直接使用 Merge，它会正确处理 imports 和别名
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
		merged.Body().AddLine()

		merged.Merge(def)
	}

	return merged, nil
}

// writeGGFile 将 gg 定义写入文件
func writeGGFile(path string, gen *gg.Generator) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return utils.WriteFormat(path, gen.Bytes())
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	var output string
	if ann != nil {
		output = ann.GetParam("output")
	}
	if output == "" && pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}
	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}

// GetDefaultOutputPath 获取默认输出路径
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "$FILE_accessor.go"
	}
	return filepath.Join(filepath.Dir(target.FilePath), replaceTemplateVars(defaultFileName, target))
}
