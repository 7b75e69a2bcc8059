// Package classify 将自由文本字段归一为分类标签。
package classify

import (
	"strings"

	"leadreport/internal/parser"
)

const (
	// Unknown 未知/未填写
	Unknown = "不明"
	// Other 无法归类
	Other = "その他"
)

// RouteRule 流入经路前缀规则
type RouteRule struct {
	Prefix   string `json:"prefix"`
	Category string `json:"category"`
}

// routeRules 按顺序匹配，先匹配的胜出；同一渠道的细分前缀必须排在通用前缀之前。
var routeRules = []RouteRule{
	{Prefix: "さきAI_YTチャンネルプロフ", Category: "さきAI_YTプロフ"},
	{Prefix: "さきAI_YTQR", Category: "さきAI_YT(QR)"},
	{Prefix: "さきAI_YT", Category: "さきAI_YT(動画)"},
	{Prefix: "さきAI業務効率化", Category: "さきAI業務効率化"},
	{Prefix: "たくむAIインスタ", Category: "たくむAIインスタ"},
	{Prefix: "たくむAI業務効率化", Category: "たくむAI業務効率化"},
	{Prefix: "たくむビジ系インスタ", Category: "たくむビジ系インスタ"},
	{Prefix: "ビジたくインスタ", Category: "たくむビジ系インスタ"},
	{Prefix: "たくむビジ系ハウス", Category: "たくむビジ系ハウス"},
	{Prefix: "たくむYT", Category: "たくむYT"},
	{Prefix: "みさをインスタ", Category: "みさをインスタ"},
	{Prefix: "みさをハウス", Category: "みさをハウス"},
	{Prefix: "えむ", Category: "えむ"},
	{Prefix: "lp01_Meta", Category: "Meta広告(LP01)"},
	{Prefix: "lp02_Meta", Category: "Meta広告(LP02)"},
}

// Routes 返回流入经路规则表的副本
func Routes() []RouteRule {
	out := make([]RouteRule, len(routeRules))
	copy(out, routeRules)
	return out
}

// CategorizeRoute 将フロント登録経路归为大分类
func CategorizeRoute(v any) string {
	s := parser.CellString(v)
	if s == "" || s == Unknown {
		return Unknown
	}
	for _, r := range routeRules {
		if strings.HasPrefix(s, r.Prefix) {
			return r.Category
		}
	}
	return Other
}
