package chunklog

import (
	"fmt"
)

// Send writes value as one complete message attributed to taskID (which may
// be LocalTaskID to mean "the currently calling task"), with the
// configured header (task representation + tick) in front. format is
// optional; when omitted or invalid, the per-type default from Config
// applies. Ports the source's send()/appendAndReturn chain.
func (p *Pipeline) Send(taskID uint8, value any, format ...Format) error {
	return p.send(taskID, InvalidTopicHandle, value, pickFormat(format), true)
}

// SendTopic is Send with a topic prefix inserted after the header.
func (p *Pipeline) SendTopic(taskID uint8, topic TopicHandle, value any, format ...Format) error {
	return p.send(taskID, topic, value, pickFormat(format), true)
}

// SendNoHeader is Send without the task representation/tick header, useful
// for continuation lines of a multi-part message.
func (p *Pipeline) SendNoHeader(taskID uint8, value any, format ...Format) error {
	return p.send(taskID, InvalidTopicHandle, value, pickFormat(format), false)
}

// SendNoHeaderTopic combines SendNoHeader with a topic prefix.
func (p *Pipeline) SendNoHeaderTopic(taskID uint8, topic TopicHandle, value any, format ...Format) error {
	return p.send(taskID, topic, value, pickFormat(format), false)
}

func pickFormat(format []Format) Format {
	if len(format) == 0 {
		return FormatInvalid
	}
	return format[0]
}

func (p *Pipeline) send(taskID uint8, topic TopicHandle, value any, format Format, withHeader bool) error {
	if p.pf.IsInterrupt() && !p.cfg.LogFromISR {
		return nil // silent drop: logging from interrupt context is opt-in
	}

	resolved := p.pf.CurrentTaskID(taskID)
	if resolved == InvalidTaskID {
		return NewTaskError("Send", taskID, ErrCodeNotRegistered, "task not registered")
	}

	a := p.appenderFor(resolved)
	a.start(resolved) // defensively reset in case a prior message was never End()ed
	if withHeader {
		p.writeHeader(a, resolved)
	}
	if topic != InvalidTopicHandle {
		a.pushBytes([]byte(p.topics.Name(topic)))
		a.pushByte(' ')
	}

	err := appendValue(a, value, format, p.cfg)
	a.flush()
	return err
}

// writeHeader renders the task representation and tick fields, each
// followed by a single space, matching Log.h's startSend.
func (p *Pipeline) writeHeader(a *appender, taskID uint8) {
	switch p.cfg.TaskRepresentation {
	case TaskRepresentationID:
		appendUint(a, uint64(taskID), p.cfg.TaskIDFormat, p.cfg.TaskIDFormat, p.cfg)
		a.pushByte(' ')
	case TaskRepresentationName:
		appendString(a, p.pf.CurrentTaskName())
		a.pushByte(' ')
	case TaskRepresentationNone:
		// no task field
	}

	if p.cfg.TickFormat.Valid() {
		appendUint(a, p.pf.Now(), p.cfg.TickFormat, p.cfg.TickFormat, p.cfg)
		a.pushByte(' ')
	}
}

// appendValue is the type-switch dispatcher standing in for the source's
// overloaded append(): one branch per supported Go type, each delegating to
// the matching format.go primitive and its per-type Config default.
func appendValue(a *appender, value any, format Format, cfg *Config) error {
	switch v := value.(type) {
	case bool:
		appendBool(a, v)
	case string:
		appendString(a, v)
	case byte: // also covers uint8 distinct from rune/int32 below
		appendUint(a, uint64(v), format, cfg.Uint8Format, cfg)
	case int8:
		appendInt(a, int64(v), format, cfg.Int8Format, cfg)
	case int16:
		appendInt(a, int64(v), format, cfg.Int16Format, cfg)
	case int32:
		appendInt(a, int64(v), format, cfg.Int32Format, cfg)
	case int64:
		appendInt(a, v, format, cfg.Int64Format, cfg)
	case int:
		appendInt(a, int64(v), format, cfg.Int64Format, cfg)
	case uint16:
		appendUint(a, uint64(v), format, cfg.Uint16Format, cfg)
	case uint32:
		appendUint(a, uint64(v), format, cfg.Uint32Format, cfg)
	case uint64:
		appendUint(a, v, format, cfg.Uint64Format, cfg)
	case uint:
		appendUint(a, uint64(v), format, cfg.Uint64Format, cfg)
	case float32:
		appendFloat(a, float64(v), format, cfg.Float32Format, cfg)
	case float64:
		appendFloat(a, v, format, cfg.Float64Format, cfg)
	default:
		appendString(a, fmt.Sprintf("%v", v))
		return NewError("Send", ErrCodeInvalidConfig, fmt.Sprintf("unsupported value type %T, used fallback formatting", v))
	}
	return nil
}
