package led

// FakeStrip records written frames for test assertions.
type FakeStrip struct {
	// Frames contains every color written, in order.
	Frames []Color

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// Write records the frame.
func (f *FakeStrip) Write(c Color) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Frames = append(f.Frames, c)
	return nil
}

// Close marks the strip as closed.
func (f *FakeStrip) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent frame, or Off if nothing was written.
func (f *FakeStrip) Last() Color {
	if len(f.Frames) == 0 {
		return Off
	}
	return f.Frames[len(f.Frames)-1]
}
