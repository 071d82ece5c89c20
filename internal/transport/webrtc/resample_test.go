package webrtc

import (
	"encoding/binary"
	"testing"
)

func beSamples(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.BigEndian.AppendUint16(out, uint16(s))
	}
	return out
}

func leSamples(t *testing.T, b []byte) []int16 {
	t.Helper()
	if len(b)%2 != 0 {
		t.Fatalf("odd byte length: %d", len(b))
	}
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
	}
	return out
}

func TestDownsampler_SingleGroup(t *testing.T) {
	var d downsampler
	in := beSamples(100, 200, 300) // avg = 200
	out := d.push(in)

	got := leSamples(t, out)
	if len(got) != 1 || got[0] != 200 {
		t.Fatalf("push(%v) = %v, want [200]", in, got)
	}
	if len(d.carry) != 0 {
		t.Errorf("carry after exact multiple of 3 samples: got %d bytes, want 0", len(d.carry))
	}
}

func TestDownsampler_MultipleGroups(t *testing.T) {
	var d downsampler
	in := beSamples(10, 20, 30, 100, 200, 300)
	out := d.push(in)

	got := leSamples(t, out)
	want := []int16{20, 200}
	if len(got) != len(want) {
		t.Fatalf("push(%v) = %v, want %v", in, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDownsampler_CarriesPartialGroupAcrossPushes(t *testing.T) {
	var d downsampler

	// First push: two samples, not a full group of three.
	first := d.push(beSamples(10, 20))
	if len(first) != 0 {
		t.Fatalf("first push with partial group: got %d output bytes, want 0", len(first))
	}
	if len(d.carry) != 4 {
		t.Fatalf("carry after partial group: got %d bytes, want 4", len(d.carry))
	}

	// Second push completes the group with one more sample (avg of 10,20,30 = 20),
	// then starts a new partial group with the next two samples.
	second := d.push(beSamples(30, 40, 50))
	got := leSamples(t, second)
	if len(got) != 1 || got[0] != 20 {
		t.Fatalf("second push = %v, want [20]", got)
	}
	if len(d.carry) != 4 {
		t.Fatalf("carry after second push: got %d bytes, want 4", len(d.carry))
	}
}

func TestDownsampler_EmptyInput(t *testing.T) {
	var d downsampler
	out := d.push(nil)
	if len(out) != 0 {
		t.Errorf("push(nil) = %v, want empty", out)
	}
}

func TestDownsampler_NegativeSamplesAverageCorrectly(t *testing.T) {
	var d downsampler
	out := d.push(beSamples(-300, -200, -100)) // avg = -200
	got := leSamples(t, out)
	if len(got) != 1 || got[0] != -200 {
		t.Fatalf("push with negative samples = %v, want [-200]", got)
	}
}
