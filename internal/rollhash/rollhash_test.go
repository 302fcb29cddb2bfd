package rollhash_test

import (
	"testing"

	"github.com/AdguardTeam/urlclassifier/internal/rollhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Extend(t *testing.T) {
	t.Parallel()

	const s = "https://ads.example.com/banner.js?utm_source=tracker&id=42"

	for _, size := range []int{1, 4, 6, 10, 14, len(s)} {
		h := rollhash.New(size)
		require.Equal(t, size, h.Size())

		var prev uint32
		for i := 0; i <= len(s)-size; i++ {
			got, ok := h.Extend(s, i, prev)
			require.True(t, ok)

			want, ok := h.Compute(s, i)
			require.True(t, ok)

			assert.Equalf(t, want, got, "size %d, window %d", size, i)

			prev = got
		}
	}
}

func TestHash_Compute(t *testing.T) {
	t.Parallel()

	h := rollhash.New(4)

	testCases := []struct {
		want assert.BoolAssertionFunc
		name string
		in   string
		idx  int
	}{{
		want: assert.True,
		name: "exact",
		in:   "abcd",
		idx:  0,
	}, {
		want: assert.True,
		name: "last_window",
		in:   "xabcd",
		idx:  1,
	}, {
		want: assert.False,
		name: "too_short",
		in:   "abc",
		idx:  0,
	}, {
		want: assert.False,
		name: "past_end",
		in:   "abcd",
		idx:  1,
	}, {
		want: assert.False,
		name: "negative",
		in:   "abcd",
		idx:  -1,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, ok := h.Compute(tc.in, tc.idx)
			tc.want(t, ok)
		})
	}

	t.Run("same_window", func(t *testing.T) {
		t.Parallel()

		a, _ := h.Compute("abcd", 0)
		b, _ := h.Compute("xabcd", 1)
		assert.Equal(t, a, b)

		c, _ := h.Compute("abce", 0)
		assert.NotEqual(t, a, c)
	})

	t.Run("polynomial", func(t *testing.T) {
		t.Parallel()

		// 'a'*256^3 + 'b'*256^2 + 'c'*256 + 'd' mod 179424673.
		const want = (97*16777216 + 98*65536 + 99*256 + 100) % 179424673

		got, ok := h.Compute("abcd", 0)
		require.True(t, ok)
		assert.Equal(t, uint32(want), got)
	})
}

func BenchmarkHash_Extend(b *testing.B) {
	const s = "https://googleads.g.doubleclick.net/pagead/ads?client=ca-pub-1234567890&output=html"

	h := rollhash.New(10)

	var hash uint32

	b.ReportAllocs()
	for b.Loop() {
		for i := 0; i <= len(s)-h.Size(); i++ {
			hash, _ = h.Extend(s, i, hash)
		}
	}

	_ = hash
}
