package tensor

import "testing"

func TestKeyEquality(t *testing.T) {
	a := ScalarKey[int64](42)
	b := ScalarKey[int64](42)
	c := ScalarKey[int64](43)

	if a != b {
		t.Error("keys over equal scalars should compare equal")
	}
	if a == c {
		t.Error("keys over different scalars should not compare equal")
	}
}

func TestKeyDTypeDistinguishes(t *testing.T) {
	a := ScalarKey[int32](1)
	b := ScalarKey[int64](1)
	if a == b {
		t.Error("keys with different dtypes should not compare equal")
	}
	if a.DType() != Int32 || b.DType() != Int64 {
		t.Errorf("key dtypes = %s, %s", a.DType(), b.DType())
	}
}

func TestKeyIsValueSnapshot(t *testing.T) {
	raw, _ := FromSlice([]int64{7}, PartialShape{1})
	k := KeyFromTensor(raw)

	// Mutating the tensor afterwards must not change the key.
	raw.AsInt64()[0] = 8
	if k != KeyFromTensor(mustFromSlice(t, []int64{7}, PartialShape{1})) {
		t.Error("key should snapshot the tensor contents at capture time")
	}
}

func TestKeyTensorRoundTrip(t *testing.T) {
	raw, _ := FromSlice([]float32{1, 2, 3, 4}, PartialShape{2, 2})
	k := KeyFromTensor(raw)

	back, err := k.Tensor()
	if err != nil {
		t.Fatalf("Tensor failed: %v", err)
	}
	if !back.Equal(raw) {
		t.Errorf("round-trip mismatch: %s vs %s", back, raw)
	}
}

func TestKeyFingerprintStable(t *testing.T) {
	a := ScalarKey[int64](42)
	b := ScalarKey[int64](42)
	c := ScalarKey[int64](43)

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal keys should have equal fingerprints")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("distinct keys should have distinct fingerprints")
	}
}

func TestKeyLessIsTotalOverDistinctKeys(t *testing.T) {
	a := ScalarKey[int64](1)
	b := ScalarKey[int64](2)

	if a.Less(b) == b.Less(a) {
		t.Error("exactly one of a<b, b<a should hold for distinct keys")
	}
	if a.Less(a) {
		t.Error("a key should not compare less than itself")
	}
}

func mustFromSlice[T DType](t *testing.T, data []T, shape PartialShape) *RawTensor {
	t.Helper()
	raw, err := FromSlice(data, shape)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return raw
}
