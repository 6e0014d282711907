package service

import (
	"strconv"
	"strings"

	"github.com/likbrus/likbrus.github.io/internal/dto"

	"github.com/shopspring/decimal"
)

// parseAmount accepts "12", "12.50" and the Norwegian "12,50".
// Negative amounts are rejected.
func parseAmount(in dto.Input) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(in.String(), " ", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// parseInt reads the leading integer of the input, so "3.5" and "12 stk"
// give 3 and 12. Input without leading digits is rejected.
func parseInt(in dto.Input) (int, bool) {
	s := in.String()
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
