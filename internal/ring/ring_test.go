package ring

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Ring
		wantErr bool
	}{
		{"Z2", Binary, false},
		{"Z2^64", Word64, false},
		{"Z3", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestBinaryArithmetic(t *testing.T) {
	for a := uint64(0); a <= 1; a++ {
		for b := uint64(0); b <= 1; b++ {
			if got := Binary.Add(a, b); got != (a+b)%2 {
				t.Errorf("Add(%d,%d) = %d, want %d", a, b, got, (a+b)%2)
			}
			if got := Binary.Mul(a, b); got != (a*b)%2 {
				t.Errorf("Mul(%d,%d) = %d, want %d", a, b, got, (a*b)%2)
			}
			want := (a - b) % 2
			if b > a {
				want = (a + 2 - b) % 2
			}
			if got := Binary.Sub(a, b); got != want {
				t.Errorf("Sub(%d,%d) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestWord64Wraparound(t *testing.T) {
	var max uint64 = 1<<64 - 1
	if got := Word64.Add(max, 1); got != 0 {
		t.Errorf("Add(max,1) = %d, want 0", got)
	}
	if got := Word64.Sub(0, 1); got != max {
		t.Errorf("Sub(0,1) = %d, want %d", got, max)
	}
	if got := Word64.Mul(1<<32, 1<<32); got != 0 {
		t.Errorf("Mul(2^32,2^32) = %d, want 0", got)
	}
}

func TestValid(t *testing.T) {
	if !Binary.Valid() || !Word64.Valid() {
		t.Fatal("enumerated rings must be valid")
	}
	if Ring("Z3").Valid() {
		t.Fatal("unknown ring reported valid")
	}
}
