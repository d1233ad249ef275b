// Package floatfmt renders IEEE-754 float32/float64 values the way WAT
// text requires: canonical NaN payloads, signed infinities and zeros, and
// finite values in round-trippable decimal form (spec.md §4.5).
package floatfmt

import (
	"math"
	"strconv"
	"strings"
)

// Float32 renders v per the WAT float-literal grammar.
func Float32(v float32) string {
	bits := math.Float32bits(v)
	switch {
	case isNaN32(bits):
		return nanString(uint64(bits&0x7fffff), bits>>31 != 0, 23)
	case math.IsInf(float64(v), 1):
		return "infinity"
	case math.IsInf(float64(v), -1):
		return "-infinity"
	default:
		return ensureFloatSyntax(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
}

// Float64 renders v per the WAT float-literal grammar.
func Float64(v float64) string {
	bits := math.Float64bits(v)
	switch {
	case isNaN64(bits):
		return nanString(bits&0xfffffffffffff, bits>>63 != 0, 52)
	case math.IsInf(v, 1):
		return "infinity"
	case math.IsInf(v, -1):
		return "-infinity"
	default:
		return ensureFloatSyntax(strconv.FormatFloat(v, 'g', -1, 64))
	}
}

// ensureFloatSyntax appends a trailing ".0" to a FormatFloat result that
// would otherwise read as an integer literal (no '.' and no exponent), so
// the text re-parses as a float per WAT's grammar rather than an integer.
func ensureFloatSyntax(s string) string {
	if strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}

func isNaN32(bits uint32) bool {
	return bits&0x7f800000 == 0x7f800000 && bits&0x7fffff != 0
}

func isNaN64(bits uint64) bool {
	return bits&0x7ff0000000000000 == 0x7ff0000000000000 && bits&0xfffffffffffff != 0
}

// nanString formats a NaN payload as nan or [+-]nan:0x<payload>, with the
// canonical quiet-NaN payload (the high mantissa bit set, nothing else)
// printed as the bare "nan"/"-nan" the grammar treats as default. A
// non-canonical payload always carries an explicit sign, including "+"
// for positive, to set it apart from the canonical bare form.
func nanString(payload uint64, negative bool, mantissaBits uint) string {
	canonical := uint64(1) << (mantissaBits - 1)
	if payload == canonical {
		if negative {
			return "-nan"
		}
		return "nan"
	}
	sign := "+"
	if negative {
		sign = "-"
	}
	return sign + "nan:0x" + strconv.FormatUint(payload, 16)
}
