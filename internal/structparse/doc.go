// Package structparse 提供访问器生成所需的类型声明静态分析。
//
// 它只依赖 go/ast，不做类型检查：
//
//  1. 类型声明定位 - 在文件中查找指定名字的类型声明（结构体或其他具名类型）
//  2. 字段信息提取 - 字段名、类型文本与 AST、文档注释与行尾注释、标签、是否嵌入
//  3. 泛型参数 - 类型参数名与约束
//  4. 导入解析 - 将源码中的包限定符映射到导入路径，未写别名时读取真实包名
//
// # 基本用法
//
//	info, err := structparse.ParseStruct("path/to/file.go", "User")
//	if err != nil {
//	    return err
//	}
//	for _, field := range info.Fields {
//	    fmt.Printf("  字段: %s %s\n", field.Name, field.Type)
//	}
//
// # 依赖注入与测试
//
// 真实包名的读取由 PackageResolver 完成，测试中可以替换：
//
//	ctx := structparse.NewParseContextWithResolver(mockResolver)
//	info, err := ctx.ParseStruct(filename, "User")
//
// # 限制
//
//   - 嵌入字段不展开，只标记 Embedded
//   - 类型别名被当作普通具名类型
package structparse
