package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDirections(n int) []Direction3 {
	ds := make([]Direction3, n)
	for i := range ds {
		ds[i] = Direction3{
			rand.Float64()*20 - 10,
			rand.Float64()*20 - 10,
			rand.Float64()*20 - 10,
		}
	}
	return ds
}

func assertDirInDelta(t *testing.T, want, got Direction3, eps float64, msg string) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, msg+" (x)")
	assert.InDelta(t, want.Y, got.Y, eps, msg+" (y)")
	assert.InDelta(t, want.Z, got.Z, eps, msg+" (z)")
}

func TestAdd(t *testing.T) {
	a, b := Direction3{1, 2, 3}, Direction3{-4, 0.5, 10}
	assert.Equal(t, Direction3{-3, 2.5, 13}, Add(a, b))

	ds := randomDirections(100)
	for i := 0; i+1 < len(ds); i++ {
		assert.Equal(t, Add(ds[i], ds[i+1]), Add(ds[i+1], ds[i]), "commutativity")
	}
}

func TestDotAndLength(t *testing.T) {
	assert.Equal(t, 32.0, Dot(Direction3{1, 2, 3}, Direction3{4, 5, 6}))
	assert.Equal(t, 0.0, Dot(Direction3{1, 0, 0}, Direction3{0, 1, 0}))
	assert.InDelta(t, 5.0, Length(Direction3{3, 4, 0}), 1e-15)
	assert.InEpsilon(t, math.Sqrt2*1e200, Length(Direction3{1e200, 1e200, 0}), 1e-14)
	assert.InEpsilon(t, 5e-170, Length(Direction3{3e-170, 4e-170, 0}), 1e-14)

	for _, v := range randomDirections(100) {
		l := Length(v)
		assert.InDelta(t, l*l, Dot(v, v), 1e-9)
	}
}

func TestMultiply(t *testing.T) {
	assert.Equal(t, Direction3{2, -4, 6}, Multiply(2, Direction3{1, -2, 3}))
	assert.Equal(t, Direction3{}, Multiply(0, Direction3{1, -2, 3}))
}

func TestCross(t *testing.T) {
	x, y, z := Direction3{1, 0, 0}, Direction3{0, 1, 0}, Direction3{0, 0, 1}
	assert.Equal(t, z, Cross(x, y), "right-handed")
	assert.Equal(t, x, Cross(y, z), "right-handed")
	assert.Equal(t, y, Cross(z, x), "right-handed")

	// Parallel and zero inputs.
	assert.Equal(t, Direction3{}, Cross(Direction3{1, 2, 3}, Direction3{2, 4, 6}))
	assert.Equal(t, Direction3{}, Cross(Direction3{}, Direction3{2, 4, 6}))

	ds := randomDirections(100)
	for i := 0; i+1 < len(ds); i++ {
		a, b := ds[i], ds[i+1]
		assert.Equal(t, Cross(a, b), Multiply(-1, Cross(b, a)), "anti-commutativity")

		c := Cross(a, b)
		assert.InDelta(t, 0, Dot(c, a), 1e-9, "orthogonal to a")
		assert.InDelta(t, 0, Dot(c, b), 1e-9, "orthogonal to b")
	}
}

func TestNormalize(t *testing.T) {
	u, err := Normalize(Direction3{0, 3, 4})
	require.NoError(t, err)
	assertDirInDelta(t, Direction3{0, 0.6, 0.8}, u, 1e-15, "3-4-5")

	for _, v := range randomDirections(100) {
		u, err := Normalize(v)
		require.NoError(t, err)
		assert.InDelta(t, 1, Length(u), 1e-12)
		assert.InDelta(t, 0, Length(Cross(u, v)), 1e-9, "same direction")
		assert.True(t, Dot(u, v) > 0, "same sense")
	}
}

func TestNormalizeExtreme(t *testing.T) {
	r := 1 / math.Sqrt2
	tests := []struct {
		v, want Direction3
	}{
		{Direction3{1e200, 1e200, 0}, Direction3{r, r, 0}},
		{Direction3{1e-200, 0, 0}, Direction3{1, 0, 0}},
		{Direction3{3e-170, 4e-170, 0}, Direction3{0.6, 0.8, 0}},
		{Direction3{-math.MaxFloat64, math.MaxFloat64, 0}, Direction3{-r, r, 0}},
		{Direction3{0, 0, 5e-324}, Direction3{0, 0, 1}},
	}

	for i, test := range tests {
		u, err := Normalize(test.v)
		require.NoError(t, err, "%d) %v", i+1, test.v)
		assertDirInDelta(t, test.want, u, 1e-15, "extreme input")
		assert.InDelta(t, 1, Length(u), 1e-15)
	}
}

func TestNormalizeInvalid(t *testing.T) {
	tests := []Direction3{
		{0, 0, 0},
		{math.Inf(1), 0, 0},
		{math.NaN(), 1, 1},
		{math.Inf(1), math.Inf(-1), 0},
	}

	for i, v := range tests {
		u, err := Normalize(v)
		assert.ErrorIs(t, err, ErrInvalidArgument, "%d) %v", i+1, v)
		assert.Equal(t, Direction3{}, u)
	}
}

func TestPointDirection(t *testing.T) {
	p1, p2 := Point3{1, 2, 3}, Point3{4, 6, 3}
	d := p2.Sub(p1)
	assert.Equal(t, Direction3{3, 4, 0}, d)
	assert.Equal(t, p2, p1.Translate(d))
	assert.Equal(t, Point3{3, 4, 0}, d.Point())
}

func TestAngleBetween(t *testing.T) {
	x, y := Direction3{1, 0, 0}, Direction3{0, 2, 0}
	assert.InDelta(t, 90, AngleBetween(x, y).Degrees(), 1e-12)
	assert.InDelta(t, 180, AngleBetween(x, Multiply(-3, x)).Degrees(), 1e-12)
	assert.InDelta(t, 45, AngleBetween(x, Direction3{1, 1, 0}).Degrees(), 1e-12)
	assert.Equal(t, 0.0, AngleBetween(x, x).Radians())
	assert.Equal(t, 0.0, AngleBetween(Direction3{}, x).Radians())

	// Nearly parallel vectors, where acos(a.b) loses everything.
	tiny := 1e-9
	got := AngleBetween(x, Direction3{1, tiny, 0}).Radians()
	assert.InEpsilon(t, tiny, got, 1e-6)
}

func TestAngleConversion(t *testing.T) {
	assert.InDelta(t, math.Pi, Deg2Rad(180), 1e-15)
	assert.InDelta(t, 180, Rad2Deg(math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, Deg2Rad(-90), 1e-15)
	assert.Equal(t, 0.0, Deg2Rad(0))

	for i := 0; i < 1000; i++ {
		x := rand.Float64()*2000 - 1000
		assert.InDelta(t, x, Rad2Deg(Deg2Rad(x)), 1e-9*math.Max(1, math.Abs(x)))
	}
}

func BenchmarkCross(b *testing.B) {
	n := 1000
	ds := randomDirections(n)
	var sum Direction3
	for i := 0; i < b.N; i++ {
		sum = Add(sum, Cross(ds[i%n], ds[(i+1)%n]))
	}
}

func BenchmarkNormalize(b *testing.B) {
	n := 1000
	ds := randomDirections(n)
	for i := 0; i < b.N; i++ {
		Normalize(ds[i%n])
	}
}
