package gen

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"runtime"
	"testing"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// flatSource always yields the midpoint of [0, 1), i.e. zero displacement.
type flatSource struct{ draws int }

func (s *flatSource) Float64() float64 { s.draws++; return 0.5 }
func (s *flatSource) Int63() int64     { return 1 }

func TestGeneratorsDeterministic(t *testing.T) {
	opts := terrain.DefaultOptions()

	for _, fn := range []struct {
		name string
		gen  Func
	}{
		{"diamondsquare", DiamondSquare},
		{"perlin", Perlin},
		{"simplex", Simplex},
	} {
		t.Run(fn.name, func(t *testing.T) {
			f1, err := fn.gen(40, 24, opts, rand.New(rand.NewSource(42)))
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			f2, _ := fn.gen(40, 24, opts, rand.New(rand.NewSource(42)))

			for i := 0; i < f1.Len(); i++ {
				if math.Float64bits(f1.At(i)) != math.Float64bits(f2.At(i)) {
					t.Fatalf("sample %d differs: %v vs %v", i, f1.At(i), f2.At(i))
				}
			}
			if !f1.Finite() {
				t.Error("generator produced non-finite samples")
			}
		})
	}
}

func TestDiamondSquareDifferentSeeds(t *testing.T) {
	opts := terrain.DefaultOptions()
	f1, _ := DiamondSquare(16, 16, opts, rand.New(rand.NewSource(1)))
	f2, _ := DiamondSquare(16, 16, opts, rand.New(rand.NewSource(2)))

	for i := 0; i < f1.Len(); i++ {
		if f1.At(i) != f2.At(i) {
			return
		}
	}
	t.Error("different seeds should produce different terrain")
}

func TestDiamondSquareCropsToRequestedSize(t *testing.T) {
	f, err := DiamondSquare(10, 3, terrain.DefaultOptions(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("DiamondSquare: %v", err)
	}
	if f.Cols() != 11 || f.Rows() != 4 {
		t.Errorf("dims = %dx%d, want 11x4", f.Cols(), f.Rows())
	}
}

func TestDiamondSquareWideFieldMemory(t *testing.T) {
	const width = 8192
	var before, after runtime.MemStats

	runtime.ReadMemStats(&before)
	f, err := DiamondSquare(width, 1, terrain.DefaultOptions(), rand.New(rand.NewSource(1)))
	runtime.ReadMemStats(&after)
	if err != nil {
		t.Fatalf("DiamondSquare: %v", err)
	}

	if f.Cols() != width+1 || f.Rows() != 2 {
		t.Fatalf("dims = %dx%d, want %dx2", f.Cols(), f.Rows(), width+1)
	}
	fieldBytes := uint64(f.Len() * 8)
	if got := after.TotalAlloc - before.TotalAlloc; got > 8*fieldBytes {
		t.Errorf("allocated %d bytes for a %d byte field", got, fieldBytes)
	}
}

func TestDiamondSquareLongFieldDeterministic(t *testing.T) {
	opts := terrain.DefaultOptions()
	f1, err := DiamondSquare(3, 70, opts, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("DiamondSquare: %v", err)
	}
	f2, _ := DiamondSquare(3, 70, opts, rand.New(rand.NewSource(11)))

	if f1.Cols() != 4 || f1.Rows() != 71 {
		t.Fatalf("dims = %dx%d, want 4x71", f1.Cols(), f1.Rows())
	}
	for i := 0; i < f1.Len(); i++ {
		if f1.At(i) != f2.At(i) {
			t.Fatalf("sample %d differs: %v vs %v", i, f1.At(i), f2.At(i))
		}
	}
	if lo, hi := f1.MinMax(); lo == hi || !f1.Finite() {
		t.Errorf("degenerate field: min=%f max=%f", lo, hi)
	}
}

func TestDisplaceRectangularLattice(t *testing.T) {
	const w, h = 9, 5
	g := make([]float64, w*h)
	// Lattice points every 4 cells: two squares side by side.
	g[0], g[4], g[8] = 0, 8, 16
	g[4*w], g[4*w+4], g[4*w+8] = 4, 12, 20

	src := &flatSource{}
	displace(g, w, h, 4, src, 8, 0.5)

	at := func(x, y int) float64 { return g[y*w+x] }

	left := (0.0 + 8 + 4 + 12) / 4
	right := (8.0 + 16 + 12 + 20) / 4
	shared := (left + right + 8 + 12) / 4
	border := (right + 16 + 20) / 3

	tests := []struct {
		name string
		x, y int
		want float64
	}{
		{"left_centre", 2, 2, left},
		{"right_centre", 6, 2, right},
		{"shared_edge", 4, 2, shared},
		{"right_border", 8, 2, border},
		{"lattice_unchanged", 8, 4, 20},
	}
	for _, tt := range tests {
		if got := at(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s (%d,%d) = %f, want %f", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	// One draw per sample that is not a lattice point.
	if src.draws != w*h-6 {
		t.Errorf("random draws = %d, want %d", src.draws, w*h-6)
	}
}

func TestLatticeSize(t *testing.T) {
	tests := []struct{ n, step, want int }{
		{2, 1, 2}, {8193, 1, 8193}, {11, 4, 13}, {4, 4, 5}, {5, 4, 5}, {71, 4, 73},
	}
	for _, tt := range tests {
		if got := latticeSize(tt.n, tt.step); got != tt.want {
			t.Errorf("latticeSize(%d, %d) = %d, want %d", tt.n, tt.step, got, tt.want)
		}
	}
}

func TestGridSize(t *testing.T) {
	tests := []struct{ n, want int }{
		{2, 2}, {3, 3}, {4, 5}, {5, 5}, {6, 9}, {17, 17}, {18, 33}, {65, 65},
	}
	for _, tt := range tests {
		if got := gridSize(tt.n); got != tt.want {
			t.Errorf("gridSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

// seeded5x5 returns a 5×5 grid with corners 0, 10, 20, 30 (TL, TR, BL, BR).
func seeded5x5() []float64 {
	g := make([]float64, 25)
	g[0], g[4], g[20], g[24] = 0, 10, 20, 30
	return g
}

func TestDisplaceBoundaryAverages(t *testing.T) {
	g := seeded5x5()
	src := &flatSource{}
	displace(g, 5, 5, 4, src, 8, 0.5)

	at := func(x, y int) float64 { return g[y*5+x] }

	// Level 1 diamond: centre from the four corners.
	centre := (0.0 + 10 + 20 + 30) / 4
	// Level 1 square: border midpoints have 3 neighbours.
	top := (0 + 10 + centre) / 3
	left := (0 + 20 + centre) / 3
	right := (10 + 30 + centre) / 3
	bottom := (20 + 30 + centre) / 3

	// Level 2 diamond: (1,1) from corners of the top-left quadrant.
	d11 := (0 + top + left + centre) / 4
	d31 := (top + 10 + centre + right) / 4
	d13 := (left + centre + 20 + bottom) / 4
	// Level 2 square: (1,0) sits on the border (3 neighbours), (2,1) is interior (4).
	s10 := (0 + top + d11) / 3
	s21 := (d11 + d31 + top + centre) / 4
	s01 := (0 + left + d11) / 3
	s12 := (left + centre + d11 + d13) / 4

	tests := []struct {
		name string
		x, y int
		want float64
	}{
		{"centre", 2, 2, centre},
		{"top_edge", 2, 0, top},
		{"left_edge", 0, 2, left},
		{"right_edge", 4, 2, right},
		{"bottom_edge", 2, 4, bottom},
		{"diamond_1_1", 1, 1, d11},
		{"border_1_0", 1, 0, s10},
		{"interior_2_1", 2, 1, s21},
		{"border_0_1", 0, 1, s01},
		{"interior_1_2", 1, 2, s12},
		{"corner_unchanged", 4, 4, 30},
	}
	for _, tt := range tests {
		if got := at(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s (%d,%d) = %f, want %f", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	// One draw per non-corner sample: 25 - 4 corners.
	if src.draws != 21 {
		t.Errorf("random draws = %d, want 21", src.draws)
	}
}

func TestDisplaceCentreWithinBound(t *testing.T) {
	const scale = 4.0
	for seed := int64(0); seed < 50; seed++ {
		g := seeded5x5()
		displace(g, 5, 5, 4, rand.New(rand.NewSource(seed)), scale, 0.5)
		if c := g[2*5+2]; math.Abs(c-15) > scale {
			t.Fatalf("seed %d: centre = %f, want 15 ± %f", seed, c, scale)
		}
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	bad := terrain.DefaultOptions()
	bad.Steps = -3

	tests := []struct {
		name string
		req  Request
		opts terrain.Options
		want error
	}{
		{"zero_width", Request{Kind: KindDiamondSquare, WidthSegments: 0, HeightSegments: 4}, terrain.DefaultOptions(), heightfield.ErrInvalidDimensions},
		{"negative_height", Request{Kind: KindPerlin, WidthSegments: 4, HeightSegments: -1}, terrain.DefaultOptions(), heightfield.ErrInvalidDimensions},
		{"bad_options", Request{Kind: KindSimplex, WidthSegments: 4, HeightSegments: 4}, bad, terrain.ErrOutOfRangeOption},
		{"unknown_kind", Request{Kind: Kind(99), WidthSegments: 4, HeightSegments: 4}, terrain.DefaultOptions(), terrain.ErrOutOfRangeOption},
		{"image_missing", Request{Kind: KindImage}, terrain.DefaultOptions(), terrain.ErrImageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.req, tt.opts, src); !errors.Is(err, tt.want) {
				t.Errorf("Generate error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerateNilSource(t *testing.T) {
	_, err := Generate(Request{Kind: KindDiamondSquare, WidthSegments: 4, HeightSegments: 4}, terrain.DefaultOptions(), nil)
	if !errors.Is(err, terrain.ErrOutOfRangeOption) {
		t.Errorf("Generate with nil source error = %v, want ErrOutOfRangeOption", err)
	}
}

func TestGenerateImageKind(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{255, 255, 255, 255})

	opts := terrain.DefaultOptions()
	opts.MinHeight, opts.MaxHeight = 0, 50

	f, err := Generate(Request{Kind: KindImage, Image: img}, opts, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.Cols() != 3 || f.Rows() != 2 {
		t.Fatalf("dims = %dx%d, want 3x2", f.Cols(), f.Rows())
	}
	if math.Abs(f.Get(2, 1)-50) > 1e-9 || f.Get(0, 0) != 0 {
		t.Errorf("samples = %v, want white pixel at 50 and black at 0", f.Values())
	}
}

func TestNoiseGeneratorsStayInRange(t *testing.T) {
	opts := terrain.DefaultOptions()
	opts.MinHeight, opts.MaxHeight = 0, 200

	for _, fn := range []Func{Perlin, Simplex} {
		f, err := fn(32, 32, opts, rand.New(rand.NewSource(5)))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		lo, hi := f.MinMax()
		if lo < opts.MinHeight-1e-9 || hi > opts.MaxHeight+1e-9 {
			t.Errorf("range [%f,%f] escapes [%f,%f]", lo, hi, opts.MinHeight, opts.MaxHeight)
		}
		if lo == hi {
			t.Error("noise generator produced a flat field")
		}
	}
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", name, got, err, k)
		}
		if k.String() != name {
			t.Errorf("%d.String() = %q, want %q", int(k), k.String(), name)
		}
	}
	if _, err := ParseKind("fault"); !errors.Is(err, terrain.ErrOutOfRangeOption) {
		t.Errorf("ParseKind(fault) error = %v, want ErrOutOfRangeOption", err)
	}
}
