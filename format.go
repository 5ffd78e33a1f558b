package chunklog

// Byte-level conversions ported from the source's append() overload set and
// the generic integer/float conversion routines in Log.h. Every conversion
// writes through an appender a byte at a time rather than building a
// string, matching the source's stack-buffer approach: digits are
// extracted least-significant-first into a local array on the Go stack,
// then emitted most-significant-first, with no heap allocation.

const (
	endOfMessage = '\r'
	fallbackByte = '#'
)

// maxDigitBuffer is the hard ceiling on the local digit-accumulator array;
// Config.AppendStackBufferLength selects the effective cap within it
// (clamped to this ceiling), and a value needing more digits than that
// overflows to fallbackByte, same as the source overflowing its stack
// buffer.
const maxDigitBuffer = 128

// effectiveDigitLimit clamps cfg's configured stack-buffer length to the
// hard ceiling, treating zero (unset) as "use the ceiling".
func effectiveDigitLimit(cfg *Config) int {
	limit := int(cfg.AppendStackBufferLength)
	if limit <= 0 || limit > maxDigitBuffer {
		return maxDigitBuffer
	}
	return limit
}

func resolveFormat(requested, fallback Format) Format {
	if requested.Valid() {
		return requested
	}
	return fallback
}

func digitChar(d uint64) byte {
	if d < 10 {
		return '0' + byte(d)
	}
	return 'a' + byte(d-10)
}

// appendUnsignedDigits writes magnitude in the given base, MSB first, zero
// filling to at least fill digits, falling back to a single '#' on base
// overflow or on exceeding cfg's configured stack-buffer length.
func appendUnsignedDigits(a *appender, magnitude uint64, base uint8, fill uint8, cfg *Config) {
	if base != 2 && base != 10 && base != 16 {
		a.pushByte(fallbackByte)
		return
	}

	limit := effectiveDigitLimit(cfg)
	var buf [maxDigitBuffer]byte
	n := 0
	b := uint64(base)

	if magnitude == 0 {
		buf[n] = '0'
		n++
	} else {
		for magnitude != 0 && n < limit {
			buf[n] = digitChar(magnitude % b)
			magnitude /= b
			n++
		}
		if magnitude != 0 {
			// digits didn't fit within the configured limit
			a.pushByte(fallbackByte)
			return
		}
	}

	if int(fill) > limit {
		// zero fill wouldn't fit within the configured limit
		a.pushByte(fallbackByte)
		return
	}
	for n < int(fill) {
		buf[n] = '0'
		n++
	}

	for i := n - 1; i >= 0; i-- {
		a.pushByte(buf[i])
	}
}

// appendSignedDigits is appendUnsignedDigits plus sign handling: a leading
// '-' for negative values, or (when cfg.AlignSigned and fill > 0) a leading
// space for non-negative ones so columns of signed numbers line up.
func appendSignedDigits(a *appender, value int64, format Format, cfg *Config) {
	var magnitude uint64
	negative := value < 0
	if negative {
		magnitude = uint64(-(value + 1)) + 1 // avoids overflow on math.MinInt64
	} else {
		magnitude = uint64(value)
	}

	if negative {
		a.pushByte('-')
	} else if cfg.AlignSigned && format.Fill > 0 {
		a.pushByte(' ')
	}
	appendUnsignedDigits(a, magnitude, format.Base, format.Fill, cfg)
}

func appendBasePrefix(a *appender, cfg *Config, base uint8) {
	if !cfg.AppendBasePrefix {
		return
	}
	switch base {
	case 2:
		a.pushBytes([]byte("0b"))
	case 16:
		a.pushBytes([]byte("0x"))
	}
}

func appendInt(a *appender, value int64, format, defaultFormat Format, cfg *Config) {
	resolved := resolveFormat(format, defaultFormat)
	appendBasePrefix(a, cfg, resolved.Base)
	appendSignedDigits(a, value, resolved, cfg)
}

func appendUint(a *appender, value uint64, format, defaultFormat Format, cfg *Config) {
	resolved := resolveFormat(format, defaultFormat)
	appendBasePrefix(a, cfg, resolved.Base)
	if cfg.AlignSigned && resolved.Fill > 0 {
		a.pushByte(' ')
	}
	appendUnsignedDigits(a, value, resolved.Base, resolved.Fill, cfg)
}

func appendBool(a *appender, value bool) {
	if value {
		a.pushBytes([]byte("true"))
	} else {
		a.pushBytes([]byte("false"))
	}
}

func appendChar(a *appender, value byte) {
	a.pushByte(value)
}

func appendString(a *appender, value string) {
	a.pushBytes([]byte(value))
}

// appendFloat renders value in scientific notation with the given number of
// significant digits (format.Fill; format.Base is unused for floats),
// ported from Log.h's floating point conversion: nan/inf/exact-zero special
// cases, then exponent/mantissa extraction with final-digit rounding.
func appendFloat(a *appender, value float64, format, defaultFormat Format, cfg *Config) {
	digits := format.Fill
	if digits == 0 {
		digits = defaultFormat.Fill
	}
	if digits == 0 {
		digits = 1
	}

	switch {
	case value != value: // NaN
		a.pushBytes([]byte("nan"))
		return
	case isInf(value):
		if value < 0 {
			a.pushByte('-')
		} else if cfg.AlignSigned {
			a.pushByte(' ')
		}
		a.pushBytes([]byte("inf"))
		return
	case value == 0:
		a.pushByte('0')
		return
	}

	negative := value < 0
	magnitude := value
	if negative {
		magnitude = -magnitude
	}

	exponent := floorLog10(magnitude)
	normalized := magnitude / pow10(exponent)

	// normalized should land in [1, 10); guard against log10 rounding
	// putting it just outside that range.
	if normalized >= 10 {
		normalized /= 10
		exponent++
	} else if normalized < 1 {
		normalized *= 10
		exponent--
	}

	var digitBuf [255]byte // digits is a uint8, so this always fits
	buf := digitBuf[:0]
	remaining := normalized
	for i := uint8(0); i < digits; i++ {
		d := int(remaining)
		if d > 9 {
			d = 9
		}
		buf = append(buf, byte('0'+d))
		remaining = (remaining - float64(d)) * 10
	}

	// round the last digit using the first dropped digit
	if int(remaining) >= 5 {
		i := len(buf) - 1
		for i >= 0 {
			if buf[i] == '9' {
				buf[i] = '0'
				i--
				continue
			}
			buf[i]++
			break
		}
		if i < 0 {
			// every digit rolled over, e.g. 9.99 -> 10.0
			buf[0] = '1'
			exponent++
		}
	}

	if negative {
		a.pushByte('-')
	} else if cfg.AlignSigned {
		a.pushByte(' ')
	}
	a.pushByte(buf[0])
	a.pushByte('.')
	for i := 1; i < len(buf); i++ {
		a.pushByte(buf[i])
	}
	a.pushByte('e')
	if exponent >= 0 {
		a.pushByte('+')
	} else {
		a.pushByte('-')
		exponent = -exponent
	}
	appendUnsignedDigits(a, uint64(exponent), 10, 2, cfg)
}

func isInf(v float64) bool {
	return v > maxFloat64 || v < -maxFloat64
}

const maxFloat64 = 1.797693134862315708145274237317043567981e+308

// floorLog10 returns floor(log10(v)) for v > 0 without importing math,
// staying consistent with the rest of this package's allocation-free style.
func floorLog10(v float64) int {
	exp := 0
	for v >= 10 {
		v /= 10
		exp++
	}
	for v < 1 {
		v *= 10
		exp--
	}
	return exp
}

func pow10(exp int) float64 {
	result := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			result *= 10
		}
		return result
	}
	for i := 0; i > exp; i-- {
		result /= 10
	}
	return result
}
