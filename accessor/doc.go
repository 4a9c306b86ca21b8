// Package accessor 根据字段上的注解推导访问器方法（setter、getter）的描述。
//
// 处理流程：
//
//	Record → ParseDirectives（逐字段）→ Resolve（可展开为多个配置）
//	       → ResolveName / Derive → Synthesize → Expansion
//
// 包内不做 I/O，也不生成代码文本，输出的 MethodSpec 由 accessorgen 渲染。
// 五种访问器变体共用同一套流程，差异全部由 Policy 描述。
package accessor
