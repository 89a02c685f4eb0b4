package ginmw

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const numericKeyPrefix = "apierrmw/param/"

// NumericParams converts the named path parameters to numbers. The value in
// c.Params is replaced by its canonical numeric text and the number itself is
// available through NumericParam. Input that is not a number becomes NaN; no
// error is raised here.
func NumericParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			for i := range c.Params {
				if c.Params[i].Key != name {
					continue
				}
				n := ToNumber(c.Params[i].Value)
				c.Params[i].Value = FormatNumber(n)
				c.Set(numericKeyPrefix+name, n)
			}
		}
		c.Next()
	}
}

// NumericParam returns the number stored by NumericParams for name.
func NumericParam(c *gin.Context, name string) (float64, bool) {
	v, ok := c.Get(numericKeyPrefix + name)
	if !ok {
		return math.NaN(), false
	}
	f, ok := v.(float64)
	return f, ok
}

// ToNumber parses s the way a loosely typed runtime would: surrounding space
// is ignored, the empty string is 0, 0x/0o/0b prefixes select the base and
// anything unparsable is NaN.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(u)
		}
	}

	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// FormatNumber renders f as text without exponent or trailing zeros.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
