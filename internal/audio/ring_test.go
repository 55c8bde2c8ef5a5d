package audio

import "testing"

func TestRingBufferReadWrite(t *testing.T) {
	b := NewRingBuffer(4)
	b.Write([]float32{1, 2, 3})

	dst := make([]float32, 2)
	if n := b.Read(dst); n != 2 || dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("Read() = %d %v, want 2 [1 2]", n, dst)
	}

	// wraps around the end of the storage
	b.Write([]float32{4, 5, 6})
	dst = make([]float32, 8)
	n := b.Read(dst)
	want := []float32{3, 4, 5, 6}
	if n != len(want) {
		t.Fatalf("Read() = %d, want %d", n, len(want))
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
	if b.Overruns() != 0 {
		t.Errorf("Overruns() = %d, want 0", b.Overruns())
	}
}

func TestRingBufferOverwritesOldest(t *testing.T) {
	b := NewRingBuffer(3)
	b.Write([]float32{1, 2})
	b.Write([]float32{3, 4})

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if b.Overruns() != 1 {
		t.Errorf("Overruns() = %d, want 1", b.Overruns())
	}

	dst := make([]float32, 3)
	b.Read(dst)
	if dst[0] != 2 || dst[1] != 3 || dst[2] != 4 {
		t.Errorf("Read() = %v, want [2 3 4]", dst)
	}
}

func TestRingBufferOversizedWrite(t *testing.T) {
	b := NewRingBuffer(2)
	b.Write([]float32{1, 2, 3, 4, 5})

	dst := make([]float32, 2)
	b.Read(dst)
	if dst[0] != 4 || dst[1] != 5 {
		t.Errorf("Read() = %v, want [4 5]", dst)
	}
	if b.Overruns() != 3 {
		t.Errorf("Overruns() = %d, want 3", b.Overruns())
	}
}
