package classify

import "strings"

type channelRule struct {
	marker string
	group  string
}

var channelRules = []channelRule{
	{marker: "さきAI_YT", group: "さきAI YouTube系"},
	{marker: "さきAI業務効率化", group: "さきAI その他"},
	{marker: "たくむ", group: "たくむ系"},
	{marker: "みさを", group: "みさを系"},
	{marker: "えむ", group: "えむ系"},
	{marker: "Meta", group: "Meta広告系"},
}

// ChannelGroup 将流入经路大分类再归并为渠道大类
func ChannelGroup(routeCategory string) string {
	for _, r := range channelRules {
		if strings.Contains(routeCategory, r.marker) {
			return r.group
		}
	}
	if routeCategory == Unknown {
		return Unknown
	}
	return Other
}
