package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/donutnomad/accessorgen/accessorgen"
	"github.com/donutnomad/accessorgen/internal/config"
	"github.com/donutnomad/accessorgen/internal/logger"
	"github.com/donutnomad/accessorgen/plugin"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// globalOptions 所有子命令共享的选项
type globalOptions struct {
	verbose    bool
	output     string
	noOutput   bool
	async      bool
	configPath string
	logLevel   string
	logJSON    bool
}

// env 由全局选项构造的运行环境
type env struct {
	cfg      *config.Config
	registry *plugin.Registry
	log      logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "accessorgen [路径...]",
		Short: "accessorgen - 根据注解生成 setter/getter 方法",
		Long:  "扫描带有 @BuilderSetters、@BasicSetters、@Setters、@AddSetters 或 @Getters 注解的结构体，在同目录生成访问器方法。",
		Example: `  accessorgen                                扫描当前目录（默认 ./...）
  accessorgen -v ./models/...                详细模式扫描 models 目录
  accessorgen --output '$FILE_gen' ./...     指定输出文件名
  accessorgen dev ./...                      开发模式，监听文件变动`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd.Context(), opts, args)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "详细输出")
	flags.StringVar(&opts.output, "output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE）")
	flags.BoolVar(&opts.noOutput, "no-output", false, "忽略配置文件中的 output，每个类型输出到各自的默认文件")
	flags.BoolVar(&opts.async, "async", true, "异步执行生成器")
	flags.StringVar(&opts.configPath, "config", config.FileName, "配置文件路径")
	flags.StringVar(&opts.logLevel, "log-level", "", "日志级别: debug|info|warn|error|disabled")
	flags.BoolVar(&opts.logJSON, "log-json", false, "使用 JSON 格式输出日志")

	root.AddCommand(
		genCmd(opts),
		devCmd(opts),
	)

	root.SetHelpTemplate(root.HelpTemplate() + annotationHelp())
	return root
}

func genCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gen [路径...]",
		Short: "执行代码生成（默认命令）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd.Context(), opts, args)
		},
	}
}

func devCmd(opts *globalOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "dev [路径...]",
		Short: "启动开发模式，监听文件变动自动生成",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			return runDev(cmd.Context(), e, &DevOptions{
				Patterns: defaultPatterns(args),
				Verbose:  opts.verbose,
				Output:   opts.outputPath(e.cfg),
				Excludes: e.cfg.Exclude,
				Async:    opts.async,
				Debounce: debounce,
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "防抖动时间")
	return cmd
}

func runGen(ctx context.Context, opts *globalOptions, args []string) error {
	e, err := opts.env()
	if err != nil {
		return err
	}

	if opts.verbose {
		for _, gen := range e.registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, _ int) string { return "@" + item })
			e.log.Debug("已注册生成器", "name", gen.Name(), "annotations", strings.Join(anns, ","))
		}
	}

	stats, err := plugin.RunWithOptionsAndStats(logger.ContextWithLogger(ctx, e.log), &plugin.RunOptions{
		Registry: e.registry,
		Patterns: defaultPatterns(args),
		Excludes: e.cfg.Exclude,
		Verbose:  opts.verbose,
		Output:   opts.outputPath(e.cfg),
		Async:    opts.async,
		Logger:   e.log,
	})
	if err != nil {
		return err
	}

	if stats != nil && (stats.FileCount > 0 || opts.verbose) {
		e.log.Info("生成完成",
			"targets", stats.TargetCount,
			"files", stats.FileCount,
			"scan", stats.ScanDuration,
			"generate", stats.GenerateDuration,
			"total", stats.TotalDuration,
		)
	}
	return nil
}

// env 加载配置、创建日志器并注册全部生成器
func (o *globalOptions) env() (*env, error) {
	level := logger.InfoLevel
	if o.verbose {
		level = logger.DebugLevel
	}
	if o.logLevel != "" {
		lvl, err := logger.ParseLevel(o.logLevel)
		if err != nil {
			return nil, err
		}
		level = lvl
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logCfg.JSON = o.logJSON
	log := logger.New(logCfg)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	log.Debug("加载配置", "path", o.configPath, "variants", len(cfg.Variants), "wrappers", len(cfg.OptionalWrappers))

	registry, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, registry: registry, log: log}, nil
}

// outputPath 命令行 > 配置文件；--no-output 时两者都忽略
func (o *globalOptions) outputPath(cfg *config.Config) string {
	switch {
	case o.noOutput:
		return ""
	case o.output != "":
		return o.output
	default:
		return cfg.Output
	}
}

func newRegistry(cfg *config.Config) (*plugin.Registry, error) {
	gens, err := accessorgen.NewGenerators(cfg)
	if err != nil {
		return nil, err
	}
	registry := plugin.NewRegistry()
	for _, gen := range gens {
		if err := registry.Register(gen); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func defaultPatterns(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

// annotationHelp 动态生成的注解帮助
func annotationHelp() string {
	registry, err := newRegistry(config.Default())
	if err != nil {
		return ""
	}
	return "\n支持的注解:\n" + plugin.FormatHelpText(registry) + `模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名
`
}
