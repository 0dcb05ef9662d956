package optimized

import (
	"math/rand/v2"
	"testing"

	"maxsum/pkg/contract"
)

func TestMaxSumKnown(t *testing.T) {
	cases := []struct {
		in   contract.Sequence
		want int64
	}{
		{contract.Sequence{}, 0},
		{contract.Sequence{-1, -2, -3}, 0},
		{contract.Sequence{5}, 5},
		{contract.Sequence{-5}, 0},
		{contract.Sequence{4, -1, 2, 1}, 6},
		{contract.Sequence{-2, 1, -3, 4, -1, 2, 1, -5, 4}, 6},
	}
	s := Strategy{}
	for _, c := range cases {
		if got := s.MaxSum(c.in); got != c.want {
			t.Fatalf("MaxSum(%v) = %d, 预期 %d", c.in, got, c.want)
		}
	}
}

// TestMatchesDefinition 与逐对重算的定义实现一致（增量和 ≡ 重算和）。
func TestMatchesDefinition(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	for round := 0; round < 200; round++ {
		n := r.IntN(24)
		a := make(contract.Sequence, n)
		for i := range a {
			a[i] = int32(r.IntN(41) - 20)
		}
		if got, want := (Strategy{}).MaxSum(a), definition(a); got != want {
			t.Fatalf("%v: got %d want %d", a, got, want)
		}
	}
}

func definition(a contract.Sequence) int64 {
	var m int64
	for i := 0; i <= len(a); i++ {
		for j := i; j <= len(a); j++ {
			var s int64
			for _, v := range a[i:j] {
				s += int64(v)
			}
			m = max(m, s)
		}
	}
	return m
}
