package ast

import (
	"math/big"
	"strconv"

	"crush/internal/lang"
)

func parseBigInt(s string) (lang.Value, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return lang.Value{}, false
	}
	return lang.Integer(n), true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
