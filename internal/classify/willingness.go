package classify

import "leadreport/internal/parser"

var willingnessLabels = map[string]string{
	"入会するか悩んでいる":      "悩んでいる",
	"入会をあまり考えていない":    "あまり考えてない",
	"入会をほぼ決めている":      "ほぼ決めている",
	"入会を全く考えていない":     "全く考えてない",
	"入会を前向きに検討している":   "前向き検討",
	"入会を決めており今すぐ始めたい": "今すぐ始めたい",
}

// ShortenWillingness 入会意欲转为短标签；未登记的回答原样返回
func ShortenWillingness(v any) string {
	s := parser.CellString(v)
	if short, ok := willingnessLabels[s]; ok {
		return short
	}
	return s
}
