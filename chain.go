package chunklog

// Chain is the fluent alternative to Send/SendTopic: a sequence of typed
// values appended to one message, started by Pipeline.I or Pipeline.N and
// closed by End. It plays the role of the source's LogShiftChainHelper,
// which callers drove with operator<< and a terminal `end` value; Go has
// no operator overloading, so Format/Value (chain methods) take that role.
//
// A Format passed via Chain.Format applies to exactly the next value and
// is then reset to invalid ("sticky-once"), matching the source's
// mNextFormat reset after each consumed append.
type Chain struct {
	p       *Pipeline
	a       *appender
	format  Format
	dropped bool
	err     error
}

// I starts a header-bearing chain for taskID (which may be LocalTaskID).
func (p *Pipeline) I(taskID uint8) *Chain {
	return p.startChain(taskID, InvalidTopicHandle, true)
}

// N starts a header-less chain for taskID, for continuation lines.
func (p *Pipeline) N(taskID uint8) *Chain {
	return p.startChain(taskID, InvalidTopicHandle, false)
}

// ITopic is I with a topic prefix inserted after the header.
func (p *Pipeline) ITopic(taskID uint8, topic TopicHandle) *Chain {
	return p.startChain(taskID, topic, true)
}

// NTopic is N with a topic prefix.
func (p *Pipeline) NTopic(taskID uint8, topic TopicHandle) *Chain {
	return p.startChain(taskID, topic, false)
}

func (p *Pipeline) startChain(taskID uint8, topic TopicHandle, withHeader bool) *Chain {
	if p.pf.IsInterrupt() && !p.cfg.LogFromISR {
		return &Chain{dropped: true}
	}

	resolved := p.pf.CurrentTaskID(taskID)
	if resolved == InvalidTaskID {
		return &Chain{err: NewTaskError("I", taskID, ErrCodeNotRegistered, "task not registered")}
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

	return &Chain{p: p, a: a, format: FormatInvalid}
}

// Format sets the format applied by the very next Value call, then reverts
// to the per-type default. A chain with no active appender (dropped by ISR
// gating, or a registration failure) ignores Format calls.
func (c *Chain) Format(f Format) *Chain {
	if c == nil || c.a == nil {
		return c
	}
	c.format = f
	return c
}

// Value appends one typed value using the format set by a preceding
// Format call, if any, or the per-type Config default otherwise, then
// clears the pending format.
func (c *Chain) Value(value any) *Chain {
	if c == nil || c.a == nil {
		return c
	}
	if err := appendValue(c.a, value, c.format, c.p.cfg); err != nil {
		c.err = err
	}
	c.format = FormatInvalid
	return c
}

// End terminates the message, flushing the appender. Mirrors the source's
// `end` sentinel. Safe to call on a dropped or failed chain.
func (c *Chain) End() error {
	if c == nil || c.dropped {
		return nil
	}
	if c.a != nil {
		c.a.flush()
	}
	return c.err
}
