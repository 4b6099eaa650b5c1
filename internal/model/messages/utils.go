package messages

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

const (
	commandParts   = 2
	descriptionMax = 30
)

// parseCommand splits "/cmd@bot rest" into "/cmd" and "rest". Plain text has an empty command.
func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	split := strings.SplitN(text, " ", commandParts)
	cmd = split[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	if len(split) == commandParts {
		arg = strings.TrimSpace(split[1])
	}
	return strings.ToLower(cmd), arg
}

// parseAmount accepts "1,250,000" style thousands separators.
func parseAmount(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, customerr.NewValidation("amount", "not a number: "+s)
	}
	return v, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, customerr.NewValidation("id", "not an expense number: "+s)
	}
	return id, nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
