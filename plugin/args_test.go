package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Arg
		wantErr string
	}{
		{
			name:  "空参数",
			input: "  ",
			want:  nil,
		},
		{
			name:  "字符串和布尔值",
			input: `name = "with_x", with_into=false`,
			want: []Arg{
				{Key: "name", Value: Literal{Kind: LiteralString, Str: "with_x", Raw: `"with_x"`}},
				{Key: "with_into", Value: Literal{Kind: LiteralBool, Bool: false, Raw: "false"}},
			},
		},
		{
			name:  "转义与原始字符串",
			input: "a=\"q\\\"x\", b=`raw\\n`",
			want: []Arg{
				{Key: "a", Value: Literal{Kind: LiteralString, Str: `q"x`, Raw: `"q\"x"`}},
				{Key: "b", Value: Literal{Kind: LiteralString, Str: `raw\n`, Raw: "`raw\\n`"}},
			},
		},
		{
			name:  "重复参数保留顺序",
			input: `prefix="a", prefix="b"`,
			want: []Arg{
				{Key: "prefix", Value: Literal{Kind: LiteralString, Str: "a", Raw: `"a"`}},
				{Key: "prefix", Value: Literal{Kind: LiteralString, Str: "b", Raw: `"b"`}},
			},
		},
		{
			name:  "允许末尾逗号",
			input: `flag=true,`,
			want:  []Arg{{Key: "flag", Value: Literal{Kind: LiteralBool, Bool: true, Raw: "true"}}},
		},
		{name: "缺少等号", input: `name "x"`, wantErr: "需要 '='"},
		{name: "缺少值", input: `name=`, wantErr: "缺少参数值"},
		{name: "裸标识符", input: `visibility=pub`, wantErr: "不支持的值 pub"},
		{name: "数字", input: `n=1`, wantErr: "不支持的值 1"},
		{name: "字符串未闭合", input: `name="x`, wantErr: "未闭合"},
		{name: "缺少逗号", input: `a="x" b="y"`, wantErr: "需要 ','"},
		{name: "缺少参数名", input: `="x"`, wantErr: "需要参数名"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLiteral(t *testing.T) {
	lit, err := ParseLiteral(` "set" `)
	require.NoError(t, err)
	assert.Equal(t, LiteralString, lit.Kind)
	assert.Equal(t, "set", lit.Str)
	assert.Equal(t, `"set"`, lit.String())

	lit, err = ParseLiteral("true")
	require.NoError(t, err)
	assert.Equal(t, LiteralBool, lit.Kind)
	assert.True(t, lit.Bool)

	_, err = ParseLiteral(`"a" "b"`)
	assert.ErrorContains(t, err, "多余内容")

	_, err = ParseLiteral("")
	assert.Error(t, err)
}

func TestLiteralConstructors(t *testing.T) {
	assert.Equal(t, Literal{Kind: LiteralString, Str: "x", Raw: `"x"`}, StringLiteral("x"))
	assert.Equal(t, Literal{Kind: LiteralBool, Bool: true, Raw: "true"}, BoolLiteral(true))
	assert.Equal(t, "string", LiteralString.String())
	assert.Equal(t, "bool", LiteralBool.String())
}
