package sensor

import (
	"errors"
	"testing"
)

func TestFakeReaderSequence(t *testing.T) {
	f := NewFakeReader(6245, 6300, 6100)

	for i, want := range []int{6245, 6300, 6100, 6100} {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("read %d: got %d, want %d", i, got, want)
		}
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader()
	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader(6245)
	f.ReadError = errors.New("simulated error")

	if _, err := f.Read(); err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeClimate(t *testing.T) {
	f := &FakeClimate{TempC: 21.5, Humidity: 48}

	temp, hum, err := f.Sense()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if temp != 21.5 || hum != 48 {
		t.Errorf("got (%v, %v), want (21.5, 48)", temp, hum)
	}

	f.SenseError = errors.New("bus error")
	if _, _, err := f.Sense(); err == nil {
		t.Error("expected error to be returned")
	}
}
