package xmath

import "testing"

func TestMinMax(t *testing.T) {
	if got := Min(3, 5); got != 3 {
		t.Errorf("Min(3, 5) = %d, want 3", got)
	}
	if got := Max(3, 5); got != 5 {
		t.Errorf("Max(3, 5) = %d, want 5", got)
	}
	if got := Min(5.5, 2.2); got != 2.2 {
		t.Errorf("Min(5.5, 2.2) = %v, want 2.2", got)
	}
}

func TestAbs(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-4, 4},
		{4, 4},
		{0, 0},
	}
	for _, c := range cases {
		if got := Abs(c.in); got != c.want {
			t.Errorf("Abs(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(10, 0, 5); got != 5 {
		t.Errorf("Clamp(10, 0, 5) = %d, want 5", got)
	}
	if got := Clamp(-3, 0, 5); got != 0 {
		t.Errorf("Clamp(-3, 0, 5) = %d, want 0", got)
	}
	if got := Clamp(3, 0, 5); got != 3 {
		t.Errorf("Clamp(3, 0, 5) = %d, want 3", got)
	}
}

func TestContains(t *testing.T) {
	s := []string{"a", "b", "c"}
	if !Contains(s, "b") {
		t.Error("Contains(s, \"b\") = false, want true")
	}
	if Contains(s, "z") {
		t.Error("Contains(s, \"z\") = true, want false")
	}
}
