package utils

import (
	"fmt"
	"os"

	"golang.org/x/tools/imports"
)

// FormatSource 格式化代码并整理 import，移除未使用的导入
func FormatSource(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w", filename, err)
	}
	return out, nil
}

// WriteFormat 格式化后写入文件
// 格式化失败时仍写入原始代码便于排查，同时返回错误
func WriteFormat(path string, src []byte) error {
	formatted, fmtErr := FormatSource(path, src)
	if fmtErr != nil {
		formatted = src
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return fmtErr
}

// CheckSyntax 只检查语法，不修改 import
func CheckSyntax(filename string, src []byte) error {
	_, err := imports.Process(filename, src, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}
