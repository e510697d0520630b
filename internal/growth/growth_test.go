package growth

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	testData := map[string]struct {
		ref, total float64
		expected   float64
		defined    bool
	}{
		"undefined on zero reference": {ref: 0, total: 100, defined: false},
		"zero growth":                 {ref: 100, total: 100, expected: 0, defined: true},
		"negative growth":             {ref: 1000, total: 850, expected: -15, defined: true},
		"positive growth":             {ref: 200, total: 250, expected: 25, defined: true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			pct, defined := Percent(td.ref, td.total)
			assert.Equal(t, td.defined, defined)
			if td.defined {
				assert.InDelta(t, td.expected, pct, 1e-9)
			}
		})
	}
}

func TestClampFloor(t *testing.T) {
	// ref 1000, total 850, growth -15% < -12% floor
	clamped := ClampFloor(1000, 850, -12)
	assert.InDelta(t, 880, clamped, 1e-9)

	pct, defined := Percent(1000, clamped)
	require.True(t, defined)
	assert.InDelta(t, -12, pct, 1e-9)

	// above the floor stays untouched
	assert.Equal(t, 950.0, ClampFloor(1000, 950, -12))
	// no upside ceiling
	assert.Equal(t, 5000.0, ClampFloor(1000, 5000, -12))
	// undefined growth stays untouched
	assert.Equal(t, 850.0, ClampFloor(0, 850, -12))
}

func TestOverrideIdempotence(t *testing.T) {
	baseline := 880.0

	first := Override(baseline, 7.5)
	second := Override(baseline, 7.5)
	assert.Equal(t, first, second)

	// zero input restores the baseline exactly
	assert.Equal(t, baseline, Override(baseline, 0))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRandom, p)

	p, err = ParsePolicy("zero")
	require.NoError(t, err)
	assert.Equal(t, PolicyZero, p)

	_, err = ParsePolicy("negate")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestSanitizer(t *testing.T) {
	src := rand.NewPCG(1, 2)

	random := NewSanitizer(PolicyRandom, src)
	for i := 0; i < 100; i++ {
		v := random.Value(-3.5)
		assert.GreaterOrEqual(t, v, float64(RandomFloorMin))
		assert.LessOrEqual(t, v, float64(RandomFloorMax))
		assert.Equal(t, v, float64(int(v)))
	}
	assert.Equal(t, 12.0, random.Value(12))
	assert.Equal(t, 0.0, random.Value(0))

	zero := NewSanitizer(PolicyZero, nil)
	assert.Equal(t, 0.0, zero.Value(-1))

	keep := NewSanitizer(PolicyKeep, nil)
	assert.Equal(t, -1.0, keep.Value(-1))

	values := []float64{5, -2, 7}
	zero.Apply(values)
	assert.Equal(t, []float64{5, 0, 7}, values)
}
