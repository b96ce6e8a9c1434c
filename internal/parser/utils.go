package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	nonIDRe  = regexp.MustCompile(`[^a-z0-9]+`)
	numberRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// NormalizeColumnName 规范化列名：小写，去除空白与常见符号
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = spaceRe.ReplaceAllString(name, "")
	return strings.NewReplacer("_", "", "-", "", ".", "", "'", "", "’", "").Replace(name)
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ParseNumber 解析单元格数值，容忍货币符号、千分位和百分号
// 空单元格返回 0
func ParseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, nil
	}
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	if !numberRe.MatchString(s) {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	if percent {
		v /= 100
	}
	if negative {
		v = -v
	}
	return v, nil
}

// ParseBool 解析勾选类单元格
func ParseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "yes", "y", "x", "✓":
		return true
	}
	return false
}

// Slug 由菜品名生成 ID
func Slug(name string) string {
	s := nonIDRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
