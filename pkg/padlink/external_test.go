package padlink

import (
	"errors"
	"testing"
)

func TestExternalDevice(t *testing.T) {
	d := NewExternalDevice("", 4, 11)
	if d.Name() != "external" || d.AxisCount() != 4 || d.ButtonCount() != 11 {
		t.Fatalf("unexpected device info")
	}

	d.Set([]int{1, 2, 3, 4, 5}, 0)
	d.SetAxis(1, -32767)
	d.SetAxis(9, 1)
	d.SetButton(8, true)
	d.SetButton(0, true)
	d.SetButton(0, false)

	st, err := d.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(st.Axes) != 4 || st.Axes[0] != 1 || st.Axes[1] != -32767 {
		t.Fatalf("unexpected axes %v", st.Axes)
	}
	if !st.Button(8) || st.Button(0) {
		t.Fatalf("unexpected buttons %b", st.Buttons)
	}

	_ = d.Close()
	if _, err := d.Read(); !errors.Is(err, ErrExternalDeviceClosed) {
		t.Fatalf("expected ErrExternalDeviceClosed, got %v", err)
	}
}
