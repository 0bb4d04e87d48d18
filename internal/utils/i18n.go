package utils

// Server-rendered strings. Keys missing in a locale fall back to English.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":             "ok",
		"page.comparisons":      "Comparisons",
		"page.error":            "Error",
		"comparisons.no_common": "No questions answered in common",
		"comparisons.unscored":  "Answers in common could not be placed on their scales",
		"comparisons.na":        "n/a",
		"comparisons.total":     "total",
	},
	"zh": {
		"health.ok":             "好的",
		"page.comparisons":      "对比",
		"page.error":            "错误",
		"comparisons.no_common": "没有共同回答的问题",
		"comparisons.unscored":  "共同回答无法在量表上定位",
		"comparisons.na":        "不适用",
		"comparisons.total":     "总计",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}
