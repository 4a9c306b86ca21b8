package accessorgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/accessorgen/accessor"
	"github.com/donutnomad/accessorgen/internal/config"
	"github.com/donutnomad/accessorgen/internal/structparse"
	"github.com/donutnomad/accessorgen/plugin"
	"github.com/donutnomad/gg"
	"github.com/samber/lo"
)

// DefaultFileName 未指定 output 时的输出文件
const DefaultFileName = "$FILE_accessor.go"

// AccessorParams 记录级注解支持的参数
type AccessorParams struct {
	Receiver string `param:"name=receiver,required=false,default=,description=接收者变量名，默认为类型名首字母小写"`
}

// AccessorGenerator 一种访问器变体对应的生成器
type AccessorGenerator struct {
	plugin.BaseGenerator
	engine *accessor.Engine
}

// NewGenerator 根据变体策略创建生成器
func NewGenerator(policy *accessor.Policy, opts ...accessor.Option) *AccessorGenerator {
	return &AccessorGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			policy.Variant,
			[]string{policy.RecordTag},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType},
			AccessorParams{},
		),
		engine: accessor.New(policy, opts...),
	}
}

func NewBuilderSettersGenerator() *AccessorGenerator { return NewGenerator(accessor.BuilderSetters()) }
func NewBasicSettersGenerator() *AccessorGenerator   { return NewGenerator(accessor.BasicSetters()) }
func NewSettersGenerator() *AccessorGenerator        { return NewGenerator(accessor.Setters()) }
func NewAddSettersGenerator() *AccessorGenerator     { return NewGenerator(accessor.AddSetters()) }
func NewGettersGenerator() *AccessorGenerator        { return NewGenerator(accessor.Getters()) }

// NewGenerators 按项目配置创建全部变体的生成器，优先级按内置顺序递增
func NewGenerators(cfg *config.Config) ([]*AccessorGenerator, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var opts []accessor.Option
	if len(cfg.OptionalWrappers) > 0 {
		wrappers := lo.Map(cfg.OptionalWrappers, func(w config.Wrapper, _ int) accessor.OptionalWrapper {
			return accessor.OptionalWrapper{Name: w.Name, Constructor: w.Constructor}
		})
		opts = append(opts, accessor.WithWrappers(append([]accessor.OptionalWrapper{accessor.DefaultWrapper}, wrappers...)...))
	}

	policies := accessor.Policies()
	gens := make([]*AccessorGenerator, 0, len(policies))
	for i, policy := range policies {
		if override, ok := cfg.Variant(policy.Variant); ok {
			if err := applyVariant(policy, override); err != nil {
				return nil, fmt.Errorf("变体 %s: %w", policy.Variant, err)
			}
		}
		gen := NewGenerator(policy, opts...)
		gen.SetPriority((i + 1) * 10)
		gens = append(gens, gen)
	}
	return gens, nil
}

func applyVariant(policy *accessor.Policy, v config.Variant) error {
	if v.DefaultPrefix != nil {
		policy.DefaultPrefix = *v.DefaultPrefix
	}
	if v.SuffixPolicy != "" {
		sp, err := accessor.ParseSuffixPolicy(v.SuffixPolicy)
		if err != nil {
			return err
		}
		policy.SuffixPolicy = sp
	}
	if v.AllowEmptyVisibility != nil {
		policy.AllowEmptyVisibility = *v.AllowEmptyVisibility
	}
	return nil
}

// FieldAnnotations 帮助信息中展示的字段注解
func (g *AccessorGenerator) FieldAnnotations() []string {
	policy := g.engine.Policy()
	return lo.Map(policy.FieldTags(), func(tag string, _ int) string {
		switch {
		case tag == policy.UmbrellaTag:
			keys := lo.Map(policy.AllowedKeys, func(k accessor.ParamKey, _ int) string { return string(k) })
			return fmt.Sprintf("@%s(%s)", tag, strings.Join(keys, ", "))
		case tag == policy.DisableTag:
			return "@" + tag
		default:
			return fmt.Sprintf("@%s = \"<%s>\"", tag, policy.LegacyTags[tag])
		}
	})
}

// entry 单个记录的扩展结果
type entry struct {
	src    *Source
	exp    *accessor.Expansion
	params AccessorParams
}

// Generate 执行代码生成
func (g *AccessorGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	log := ctx.Log()
	tag := g.engine.Policy().RecordTag

	// key: 输出路径
	fileEntries := make(map[string][]*entry)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, tag)
		if ann == nil {
			continue
		}

		var params AccessorParams
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(AccessorParams)
			if !ok {
				result.AddError(fmt.Errorf("ParsedParams 类型断言失败: %T", at.ParsedParams))
				continue
			}
		}

		info, err := structparse.ParseStruct(at.Target.FilePath, at.Target.Name)
		if err != nil {
			result.AddError(fmt.Errorf("解析类型 %s 失败: %w", at.Target.Name, err))
			continue
		}

		src := BuildRecord(info)
		exp, err := g.engine.Expand(src.Record)
		if err != nil {
			result.AddError(fmt.Errorf("%s: %w", at.Target.FilePath, err))
			continue
		}
		if len(exp.Methods) == 0 {
			log.Debug("没有需要生成的方法", "generator", g.Name(), "type", at.Target.Name)
			result.Skipped++
			continue
		}

		outputPath := plugin.GetOutputPath(at.Target, ann, DefaultFileName, ctx.GetPackageConfig(at.Target.FilePath), g.Name(), ctx.DefaultOutput)
		fileEntries[outputPath] = append(fileEntries[outputPath], &entry{src: src, exp: exp, params: params})

		log.Debug("处理类型", "generator", g.Name(), "type", at.Target.Name, "methods", len(exp.Methods), "output", outputPath)
		if ctx.Verbose {
			log.Debug("方法描述", "generator", g.Name(), "methods", spew.Sdump(exp.Methods))
		}
	}

	for _, outputPath := range sortedPaths(fileEntries) {
		entries := fileEntries[outputPath]
		// 同一文件中按类型名排序，保证输出稳定
		slices.SortFunc(entries, func(a, b *entry) int {
			return strings.Compare(a.exp.Record.Name, b.exp.Record.Name)
		})

		gen := gg.New()
		gen.SetPackage(entries[0].exp.Record.PackageName)
		for i, e := range entries {
			if i > 0 {
				gen.Body().AddLine()
			}
			Emit(gen, e.src, e.exp, e.params)
		}
		result.AddDefinition(outputPath, gen)
	}

	return result, nil
}
