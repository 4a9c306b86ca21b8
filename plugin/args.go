package plugin

import (
	"fmt"
	"strconv"
)

// LiteralKind 字面量类型
type LiteralKind int

const (
	LiteralString LiteralKind = iota + 1
	LiteralBool
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Literal 注解参数值，在解析阶段即确定类型
type Literal struct {
	Kind LiteralKind
	Str  string // Kind == LiteralString 时有效
	Bool bool   // Kind == LiteralBool 时有效
	Raw  string // 源文本
}

func (l Literal) String() string {
	return l.Raw
}

// StringLiteral 构造字符串字面量
func StringLiteral(s string) Literal {
	return Literal{Kind: LiteralString, Str: s, Raw: strconv.Quote(s)}
}

// BoolLiteral 构造布尔字面量
func BoolLiteral(b bool) Literal {
	return Literal{Kind: LiteralBool, Bool: b, Raw: strconv.FormatBool(b)}
}

// Arg 严格解析得到的 key=literal 参数
type Arg struct {
	Key   string
	Value Literal
}

// ParseArgs 严格解析括号内的参数列表
// 格式: key = "string", key = `raw`, key = true
// 与 parseParams 不同，非法语法会返回错误，参数顺序与重复项均保留
func ParseArgs(content string) ([]Arg, error) {
	l := &argLexer{src: content}

	var args []Arg
	for {
		l.skipSpace()
		if l.eof() {
			break
		}

		key := l.ident()
		if key == "" {
			return nil, fmt.Errorf("位置 %d 处需要参数名, 得到 %q", l.pos, l.rest())
		}

		l.skipSpace()
		if !l.consume('=') {
			return nil, fmt.Errorf("参数 %s 后需要 '='", key)
		}

		l.skipSpace()
		lit, err := l.literal()
		if err != nil {
			return nil, fmt.Errorf("参数 %s 的值无效: %w", key, err)
		}
		args = append(args, Arg{Key: key, Value: lit})

		l.skipSpace()
		if l.eof() {
			break
		}
		if !l.consume(',') {
			return nil, fmt.Errorf("参数 %s 后需要 ',', 得到 %q", key, l.rest())
		}
	}

	return args, nil
}

// ParseLiteral 严格解析单个字面量
func ParseLiteral(src string) (Literal, error) {
	l := &argLexer{src: src}
	l.skipSpace()
	lit, err := l.literal()
	if err != nil {
		return Literal{}, err
	}
	l.skipSpace()
	if !l.eof() {
		return Literal{}, fmt.Errorf("字面量后存在多余内容 %q", l.rest())
	}
	return lit, nil
}

type argLexer struct {
	src string
	pos int
}

func (l *argLexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *argLexer) rest() string {
	return l.src[l.pos:]
}

func (l *argLexer) skipSpace() {
	l.pos = skipSpaces(l.src, l.pos)
}

func (l *argLexer) consume(c byte) bool {
	if !l.eof() && l.src[l.pos] == c {
		l.pos++
		return true
	}
	return false
}

func (l *argLexer) ident() string {
	start := l.pos
	for !l.eof() && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *argLexer) literal() (Literal, error) {
	if l.eof() {
		return Literal{}, fmt.Errorf("缺少参数值")
	}

	start := l.pos
	switch l.src[l.pos] {
	case '"':
		for l.pos++; !l.eof(); l.pos++ {
			switch l.src[l.pos] {
			case '\\':
				l.pos++
			case '"':
				l.pos++
				raw := l.src[start:l.pos]
				s, err := strconv.Unquote(raw)
				if err != nil {
					return Literal{}, fmt.Errorf("字符串 %s 无法解析: %w", raw, err)
				}
				return Literal{Kind: LiteralString, Str: s, Raw: raw}, nil
			}
		}
		return Literal{}, fmt.Errorf("字符串未闭合: %s", l.src[start:])

	case '`':
		for l.pos++; !l.eof(); l.pos++ {
			if l.src[l.pos] == '`' {
				l.pos++
				raw := l.src[start:l.pos]
				return Literal{Kind: LiteralString, Str: raw[1 : len(raw)-1], Raw: raw}, nil
			}
		}
		return Literal{}, fmt.Errorf("字符串未闭合: %s", l.src[start:])
	}

	word := l.ident()
	switch word {
	case "true":
		return Literal{Kind: LiteralBool, Bool: true, Raw: word}, nil
	case "false":
		return Literal{Kind: LiteralBool, Bool: false, Raw: word}, nil
	case "":
		return Literal{}, fmt.Errorf("无法识别的字符 %q", l.src[l.pos:l.pos+1])
	default:
		return Literal{}, fmt.Errorf("不支持的值 %s，需要字符串或布尔值", word)
	}
}
