package chunklog

import (
	"testing"

	"github.com/kallsen/chunklog/internal/ring"
	"github.com/stretchr/testify/assert"
)

// render drives an appender through one value and returns the assembled
// message bytes up to (not including) the terminal '\r'.
func render(t *testing.T, fn func(a *appender)) string {
	t.Helper()
	var pushed []ring.Chunk
	a := newAppender(1, func(c ring.Chunk, blocks bool) bool {
		pushed = append(pushed, c)
		return true
	}, true)

	fn(a)
	a.flush()

	var out []byte
	for _, chunk := range pushed {
		for i := 1; i < len(chunk); i++ {
			if chunk[i] == endOfMessage {
				return string(out)
			}
			out = append(out, chunk[i])
		}
	}
	return string(out)
}

func TestAppendUnsignedDecimal(t *testing.T) {
	out := render(t, func(a *appender) {
		appendUint(a, 1234567890, FormatInvalid, FormatDefault, DefaultConfig())
	})
	assert.Equal(t, "1234567890", out)
}

func TestAppendUnsignedHexWithFill(t *testing.T) {
	out := render(t, func(a *appender) {
		appendUint(a, 0x2a, FormatX4, FormatDefault, DefaultConfig())
	})
	assert.Equal(t, "002a", out)
}

func TestAppendSignedNegative(t *testing.T) {
	out := render(t, func(a *appender) {
		appendInt(a, -42, FormatInvalid, FormatDefault, DefaultConfig())
	})
	assert.Equal(t, "-42", out)
}

func TestAppendSignedMinInt64(t *testing.T) {
	out := render(t, func(a *appender) {
		appendInt(a, -9223372036854775808, FormatInvalid, FormatDefault, DefaultConfig())
	})
	assert.Equal(t, "-9223372036854775808", out)
}

func TestAppendBasePrefix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AppendBasePrefix = true
	out := render(t, func(a *appender) {
		appendUint(a, 10, FormatX2, FormatDefault, cfg)
	})
	assert.Equal(t, "0x0a", out)
}

func TestAppendBinaryFill(t *testing.T) {
	out := render(t, func(a *appender) {
		appendUint(a, 5, FormatB4, FormatDefault, DefaultConfig())
	})
	assert.Equal(t, "0101", out)
}

func TestAppendInvalidBaseFallsBackToHash(t *testing.T) {
	out := render(t, func(a *appender) {
		appendUnsignedDigits(a, 5, 7, 0, DefaultConfig())
	})
	assert.Equal(t, "#", out)
}

func TestAppendAlignSignedPadsPositiveInteger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AlignSigned = true
	out := render(t, func(a *appender) {
		appendInt(a, 5, FormatD3, FormatDefault, cfg)
	})
	assert.Equal(t, " 005", out)
}

func TestAppendAlignSignedNoPadWhenFillZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AlignSigned = true
	out := render(t, func(a *appender) {
		appendInt(a, 5, FormatDefault, FormatDefault, cfg)
	})
	assert.Equal(t, "5", out)
}

func TestAppendBool(t *testing.T) {
	assert.Equal(t, "true", render(t, func(a *appender) { appendBool(a, true) }))
	assert.Equal(t, "false", render(t, func(a *appender) { appendBool(a, false) }))
}

func TestAppendString(t *testing.T) {
	out := render(t, func(a *appender) { appendString(a, "hello") })
	assert.Equal(t, "hello", out)
}

func TestAppendFloatNegativeScientific(t *testing.T) {
	out := render(t, func(a *appender) {
		appendFloat(a, -0.0125, FormatInvalid, FormatD5, DefaultConfig())
	})
	assert.Equal(t, "-1.2500e-02", out)
}

func TestAppendFloatPositiveExponent(t *testing.T) {
	out := render(t, func(a *appender) {
		appendFloat(a, 123456.0, FormatInvalid, FormatD5, DefaultConfig())
	})
	assert.Equal(t, "1.2346e+05", out)
}

func TestAppendFloatZero(t *testing.T) {
	out := render(t, func(a *appender) {
		appendFloat(a, 0.0, FormatInvalid, FormatD5, DefaultConfig())
	})
	assert.Equal(t, "0", out)
}

func TestAppendFloatNaN(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	out := render(t, func(a *appender) {
		appendFloat(a, nan, FormatInvalid, FormatD5, DefaultConfig())
	})
	assert.Equal(t, "nan", out)
}

func TestResolveFormatFallsBackWhenInvalid(t *testing.T) {
	assert.Equal(t, FormatD3, resolveFormat(FormatInvalid, FormatD3))
	assert.Equal(t, FormatX2, resolveFormat(FormatX2, FormatD3))
}
