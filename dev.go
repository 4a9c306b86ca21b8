package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/accessorgen/internal/logger"
	"github.com/donutnomad/accessorgen/internal/utils"
	"github.com/donutnomad/accessorgen/plugin"
	"github.com/fsnotify/fsnotify"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Excludes []string      // 排除的文件模式
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	log      logger.Logger
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	ctx      context.Context // 用于响应退出信号

	// 防抖动相关
	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录路径
}

// runDev 启动开发模式，ctx 取消时退出
func runDev(ctx context.Context, e *env, opts *DevOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	runner := &devRunner{
		opts:     opts,
		registry: e.registry,
		log:      e.log,
		watcher:  watcher,
		scanner: plugin.NewScanner(
			plugin.WithAnnotationFilter(e.registry.Annotations()...),
			plugin.WithExcludePatterns(opts.Excludes...),
			plugin.WithScannerLogger(e.log),
		),
		ctx:         ctx,
		pendingDirs: make(map[string]*time.Timer),
	}

	// 退出时停止所有待处理的定时器
	defer runner.stopTimers()

	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		runner.log.Debug("监听目录", "dir", dir)
	}

	runner.log.Info("开发模式已启动，按 Ctrl+C 退出", "dirs", len(dirs), "debounce", opts.Debounce)
	return runner.watchLoop(ctx)
}

func (r *devRunner) stopTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for dir, timer := range r.pendingDirs {
		timer.Stop()
		delete(r.pendingDirs, dir)
	}
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.log.Info("正在退出...")
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("监听错误", "error", err)
		}
	}
}

// handleEvent 处理文件事件
func (r *devRunner) handleEvent(event fsnotify.Event) {
	// 只关注 Write 和 Create 事件
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	filePath := event.Name
	if !plugin.IsSourceFile(filePath) {
		return
	}
	r.log.Debug("检测到文件变化", "file", filePath)

	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		r.log.Debug("检查注解失败", "file", filePath, "error", err)
		return
	}
	if !hasAnnotation {
		r.log.Debug("跳过文件（无注解）", "file", filePath)
		return
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		r.log.Warn("读取文件失败", "file", filePath, "error", err)
		return
	}
	if err := utils.CheckSyntax(filePath, content); err != nil {
		r.log.Error("语法错误", "file", filePath, "error", err)
		return
	}

	r.scheduleGenerate(filepath.Dir(filePath))
}

// scheduleGenerate 防抖动调度生成，同一目录在 Debounce 内的多次变动只触发一次
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[pkgDir]; exists {
		timer.Stop()
	}

	r.pendingDirs[pkgDir] = time.AfterFunc(r.opts.Debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.runGenerate(pkgDir)

		r.mu.Lock()
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()
	})
}

// runGenerate 只生成变动的包
func (r *devRunner) runGenerate(pkgDir string) {
	r.log.Debug("触发代码生成", "dir", pkgDir)

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir},
		Excludes: r.opts.Excludes,
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
		Logger:   r.log,
	})
	if err != nil {
		r.log.Error("生成失败", "dir", pkgDir, "error", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		r.log.Info("生成完成", "files", stats.FileCount, "duration", stats.TotalDuration)
	} else {
		r.log.Debug("生成完成: 无文件生成", "dir", pkgDir)
	}
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		absDir, err := filepath.Abs(strings.TrimSuffix(pattern, "/..."))
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// 跳过隐藏目录、vendor 和 testdata
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}
