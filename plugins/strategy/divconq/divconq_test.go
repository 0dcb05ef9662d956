package divconq

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maxsum/pkg/contract"
)

func TestMaxSumKnown(t *testing.T) {
	tests := []struct {
		name string
		in   contract.Sequence
		want int64
	}{
		{"empty", nil, 0},
		{"all negative", contract.Sequence{-1, -2, -3}, 0},
		{"single positive", contract.Sequence{5}, 5},
		{"single negative", contract.Sequence{-5}, 0},
		{"whole", contract.Sequence{4, -1, 2, 1}, 6},
		{"classic", contract.Sequence{-2, 1, -3, 4, -1, 2, 1, -5, 4}, 6},
		{"crossing only", contract.Sequence{-9, 3, 3, -9}, 6},
	}
	s := Strategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.MaxSum(tt.in))
		})
	}
}

// TestPrefixSuffix 单次线性扫描的前缀/后缀和与定义一致。
func TestPrefixSuffix(t *testing.T) {
	a := contract.Sequence{2, -5, 3, 1, -2, 4, -1}
	for lo := 0; lo < len(a); lo++ {
		for hi := lo; hi < len(a); hi++ {
			var wantPre, wantSuf, s int64
			for i := lo; i <= hi; i++ {
				s += int64(a[i])
				wantPre = max(wantPre, s)
			}
			s = 0
			for i := hi; i >= lo; i-- {
				s += int64(a[i])
				wantSuf = max(wantSuf, s)
			}
			require.Equal(t, wantPre, maxPrefix(a, lo, hi), "prefix [%d,%d]", lo, hi)
			require.Equal(t, wantSuf, maxSuffix(a, lo, hi), "suffix [%d,%d]", lo, hi)
		}
	}
}

func TestAgainstLinearScan(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 9))
	for round := 0; round < 300; round++ {
		a := make(contract.Sequence, r.IntN(64))
		for i := range a {
			a[i] = int32(r.IntN(201) - 100)
		}
		var best, suf int64
		for _, v := range a {
			suf = max(0, suf+int64(v))
			best = max(best, suf)
		}
		require.Equal(t, best, (Strategy{}).MaxSum(a), "%v", a)
	}
}

func TestDepth(t *testing.T) {
	s := Strategy{}
	assert.Equal(t, 1, s.Depth(0))
	assert.Equal(t, 1, s.Depth(1))
	assert.Equal(t, 2, s.Depth(2))
	assert.Equal(t, 3, s.Depth(3))
	assert.Equal(t, 3, s.Depth(4))
	assert.Equal(t, 4, s.Depth(5))
	assert.Equal(t, 32, s.Depth(1<<31-1))
}
