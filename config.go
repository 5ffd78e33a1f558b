package chunklog

import (
	"time"

	"github.com/kallsen/chunklog/internal/constants"
)

// Format holds numeric system and zero-fill information for rendering one
// value. Base must be 2, 10 or 16; Fill is the
// minimum digit count (0 means natural width, counting digits only, never
// sign or base prefix).
type Format struct {
	Base uint8
	Fill uint8
}

// Valid reports whether Base is one of the three supported numeric systems.
// An invalid Format instructs the formatter to fall back to the per-type
// default from Config.
func (f Format) Valid() bool {
	return f.Base == 2 || f.Base == 10 || f.Base == 16
}

// Preset formats, named the way Log.h names them: the letter is the base
// (B=binary, D=decimal, X=hex) and the number is the fill width.
var (
	FormatDefault = Format{Base: 10, Fill: 0}
	FormatInvalid = Format{Base: 0, Fill: 0}

	FormatB4  = Format{Base: 2, Fill: 4}
	FormatB8  = Format{Base: 2, Fill: 8}
	FormatB12 = Format{Base: 2, Fill: 12}
	FormatB16 = Format{Base: 2, Fill: 16}
	FormatB24 = Format{Base: 2, Fill: 24}
	FormatB32 = Format{Base: 2, Fill: 32}

	FormatD1  = Format{Base: 10, Fill: 1}
	FormatD2  = Format{Base: 10, Fill: 2}
	FormatD3  = Format{Base: 10, Fill: 3}
	FormatD4  = Format{Base: 10, Fill: 4}
	FormatD5  = Format{Base: 10, Fill: 5}
	FormatD6  = Format{Base: 10, Fill: 6}
	FormatD7  = Format{Base: 10, Fill: 7}
	FormatD8  = Format{Base: 10, Fill: 8}
	FormatD16 = Format{Base: 10, Fill: 16}

	FormatX1  = Format{Base: 16, Fill: 1}
	FormatX2  = Format{Base: 16, Fill: 2}
	FormatX3  = Format{Base: 16, Fill: 3}
	FormatX4  = Format{Base: 16, Fill: 4}
	FormatX6  = Format{Base: 16, Fill: 6}
	FormatX8  = Format{Base: 16, Fill: 8}
	FormatX16 = Format{Base: 16, Fill: 16}
)

// TaskRepresentation selects what a message header shows about its
// emitting task.
type TaskRepresentation uint8

const (
	// TaskRepresentationNone omits any task info from the header.
	TaskRepresentationNone TaskRepresentation = iota
	// TaskRepresentationID shows the numeric TaskID, formatted by TaskIDFormat.
	TaskRepresentationID
	// TaskRepresentationName shows the platform-supplied task name.
	TaskRepresentationName
)

// Config mirrors the source's LogConfig configuration surface. Passed to
// New and referenced, not copied, for the pipeline's lifetime.
type Config struct {
	// AllowRegistrationLog emits a line through the normal pipeline on
	// task (un)registration.
	AllowRegistrationLog bool
	// LogFromISR allows log calls made while Platform.IsInterrupt is true.
	LogFromISR bool

	QueueLength          int
	CircularBufferLength int
	TransmitBufferLength int
	PauseLength          time.Duration
	RefreshPeriod        time.Duration

	// Blocks selects whether Push blocks on a full queue or drops.
	Blocks bool

	TaskRepresentation TaskRepresentation
	AppendBasePrefix   bool

	TaskIDFormat Format
	// TickFormat set to FormatInvalid disables the tick field entirely.
	TickFormat Format

	Int8Format   Format
	Int16Format  Format
	Int32Format  Format
	Int64Format  Format
	Uint8Format  Format
	Uint16Format Format
	Uint32Format Format
	Uint64Format Format

	// Float32Format/Float64Format/FloatExtendedFormat set the default
	// significant-digit count per width (5/8/16 respectively).
	// FloatExtendedFormat has no distinct Go type to attach to (no 80-bit
	// extended float) — it is a digit-count knob callers opt into
	// explicitly by passing it as an explicit Format to Send.
	Float32Format      Format
	Float64Format      Format
	FloatExtendedFormat Format

	// AlignSigned pads non-negative integers (when Fill > 0) and positive
	// floats (including +inf) with a leading space to align with negatives.
	// An exact-zero float renders as "0" and NaN as "nan", both unpadded.
	// The asymmetry (integers only align when Fill > 0, floats always) is
	// preserved from the source as-is; see DESIGN.md.
	AlignSigned bool

	// AppendStackBufferLength bounds the integer formatter's digit
	// accumulator; values needing more digits than this render as '#'.
	AppendStackBufferLength uint8

	// MaxTopicCount bounds the topic registry.
	MaxTopicCount int
}

// DefaultConfig returns the same defaults as the source's LogConfig.
func DefaultConfig() *Config {
	return &Config{
		AllowRegistrationLog: true,
		LogFromISR:           false,

		QueueLength:          constants.DefaultQueueLength,
		CircularBufferLength: constants.DefaultCircularBufferLength,
		TransmitBufferLength: constants.DefaultTransmitBufferLength,
		PauseLength:          constants.DefaultPauseLengthMillis * time.Millisecond,
		RefreshPeriod:        constants.DefaultRefreshPeriodMillis * time.Millisecond,

		Blocks: true,

		TaskRepresentation: TaskRepresentationID,
		AppendBasePrefix:   false,

		TaskIDFormat: FormatX2,
		TickFormat:   FormatD5,

		Int8Format:   FormatDefault,
		Int16Format:  FormatDefault,
		Int32Format:  FormatDefault,
		Int64Format:  FormatDefault,
		Uint8Format:  FormatDefault,
		Uint16Format: FormatDefault,
		Uint32Format: FormatDefault,
		Uint64Format: FormatDefault,

		Float32Format:       FormatD5,
		Float64Format:       FormatD8,
		FloatExtendedFormat: FormatD16,

		AlignSigned: false,

		AppendStackBufferLength: constants.DefaultAppendStackBufferLength,
		MaxTopicCount:           constants.DefaultMaxTopicCount,
	}
}
