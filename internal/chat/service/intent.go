package service

import (
	"strings"

	"github.com/smallbiznis/vyapar/internal/chat/domain"
)

type intentKeywords struct {
	intent   domain.Intent
	keywords []string
}

// English, Hindi and Hinglish phrasings per intent.
var intentTable = []intentKeywords{
	{domain.IntentRevenue, []string{
		"revenue", "sales", "bikri", "sell", "kitna aaya",
		"paisa kitna", "revenue ka scene", "total sales",
		"earning", "income", "kamai", "turnover",
	}},
	{domain.IntentProfit, []string{
		"profit", "margin", "munafa", "fayda", "net profit",
		"gross profit", "profit kitna", "profit scene",
		"kamaa", "earn",
	}},
	{domain.IntentLowStock, []string{
		"low stock", "lowstock", "stock alert", "stock khatam",
		"maal khatam", "stock kam", "stock check", "inventory",
		"stock scene", "maal kitna", "godown",
	}},
	{domain.IntentProduction, []string{
		"production", "manufacturing", "produce", "utpaadan",
		"batch", "factory", "production scene", "kitna bana",
	}},
	{domain.IntentTopProducts, []string{
		"top product", "best seller", "sabse zyada",
		"hit product", "popular", "top selling", "best product",
	}},
	{domain.IntentHelp, []string{
		"help", "commands", "menu", "kya kar sakta",
		"options", "features", "madad",
	}},
}

// MatchIntent maps text to an intent. An exact hit on the whole message or
// its first word wins; otherwise the longest keyword found anywhere in the
// message decides, with table order breaking ties.
func MatchIntent(text string) (domain.Intent, bool) {
	cmd := strings.ToLower(strings.TrimSpace(text))
	if cmd == "" {
		return "", false
	}
	firstWord := strings.Fields(cmd)[0]

	for _, row := range intentTable {
		for _, kw := range row.keywords {
			if kw == cmd || kw == firstWord {
				return row.intent, true
			}
		}
	}

	var (
		best    domain.Intent
		bestLen int
	)
	for _, row := range intentTable {
		for _, kw := range row.keywords {
			if len(kw) > bestLen && strings.Contains(cmd, kw) {
				best, bestLen = row.intent, len(kw)
			}
		}
	}
	return best, bestLen > 0
}

var periodAnswers = map[string]int{
	"7": 7, "7 din": 7, "week": 7, "hafta": 7,
	"30": 30, "30 din": 30, "month": 30, "mahina": 30,
	"90": 90, "3 mahina": 90, "quarter": 90, "3 month": 90,
	"1": 7, "2": 30, "3": 90,
}

// periodFromAnswer reads a reply to the period question.
func periodFromAnswer(text string) (int, bool) {
	days, ok := periodAnswers[strings.ToLower(strings.TrimSpace(text))]
	return days, ok
}

var periodHints = []struct {
	token string
	days  int
}{
	{"90", 90}, {"quarter", 90}, {"3 mahina", 90}, {"3 month", 90},
	{"30", 30}, {"month", 30}, {"mahina", 30},
	{"7", 7}, {"week", 7}, {"hafta", 7},
}

// periodInText finds a period mentioned inside a longer message such as
// "sales last week".
func periodInText(text string) (int, bool) {
	cmd := strings.ToLower(text)
	for _, hint := range periodHints {
		if strings.Contains(cmd, hint.token) {
			return hint.days, true
		}
	}
	return 0, false
}
