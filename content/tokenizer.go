package content

import (
	"strings"
	"unicode"
)

// stopwords 是英文停用词表（商品名/类目/标签文本里最常见的功能词）。
// 词表取自常用英文停用词的子集；商品文本较短，罕见停用词对向量影响可忽略。
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
		"from", "has", "have", "he", "her", "his", "if", "in", "into",
		"is", "it", "its", "my", "no", "not", "of", "on", "or", "our",
		"she", "so", "such", "that", "the", "their", "them", "then",
		"there", "these", "they", "this", "to", "was", "we", "were",
		"what", "when", "which", "who", "will", "with", "you", "your",
	} {
		stopwords[w] = struct{}{}
	}
}

// Tokenize 把文本切成小写词元：按非字母数字切分，去停用词与单字符词元。
// 商品的内容向量由 Name/Category/Tags 拼接后的词元确定性推导。
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ProductText 返回参与向量化的商品文本：name + category + tags 拼接。
func ProductText(name, category string, tags []string) string {
	parts := make([]string, 0, 2+len(tags))
	parts = append(parts, name, category)
	parts = append(parts, tags...)
	return strings.Join(parts, " ")
}
