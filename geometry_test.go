package termrender

import (
	"errors"
	"image"
	"testing"
)

func TestResolveSizeFitWithin(t *testing.T) {
	text := TextCellGeometry(0.5) // {1, 2, 1.0}

	tests := []struct {
		name     string
		original image.Point
		geom     CellGeometry
		avail    Size
		allow    Allowance
		want     Size
	}{
		{
			name:     "width bound",
			original: image.Pt(100, 50),
			geom:     text,
			avail:    Size{Cols: 80, Rows: 26},
			allow:    DefaultAllowance,
			want:     Size{Cols: 80, Rows: 20},
		},
		{
			name:     "height bound",
			original: image.Pt(50, 100),
			geom:     text,
			avail:    Size{Cols: 80, Rows: 27},
			allow:    DefaultAllowance,
			want:     Size{Cols: 25, Rows: 25},
		},
		{
			name:     "wide pixels halve the columns",
			original: image.Pt(100, 100),
			geom:     TextCellGeometry(1.0), // {1, 2, 2.0}
			avail:    Size{Cols: 100, Rows: 52},
			allow:    DefaultAllowance,
			want:     Size{Cols: 50, Rows: 50},
		},
		{
			name:     "tiny original never collapses to zero",
			original: image.Pt(1, 1),
			geom:     text,
			avail:    Size{Cols: 80, Rows: 26},
			allow:    DefaultAllowance,
			want:     Size{Cols: 48, Rows: 24},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSize(tt.original, FitWithin, tt.geom, tt.allow, tt.avail, nil)
			if err != nil {
				t.Fatalf("ResolveSize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveSize() = %v, want %v", got, tt.want)
			}
			if got.Cols > tt.avail.Cols-tt.allow.Horizontal || got.Rows > tt.avail.Rows-tt.allow.Vertical {
				t.Errorf("ResolveSize() = %v exceeds available %v less allowance %v", got, tt.avail, tt.allow)
			}
		})
	}
}

func TestResolveSizeExact(t *testing.T) {
	text := TextCellGeometry(0.5)
	graphics := GraphicsCellGeometry(10, 20)

	tests := []struct {
		name     string
		original image.Point
		mode     SizingMode
		geom     CellGeometry
		want     Size
	}{
		{"exact width", image.Pt(100, 50), ExactWidth(40), text, Size{Cols: 40, Rows: 10}},
		{"exact height", image.Pt(100, 50), ExactHeight(10), text, Size{Cols: 40, Rows: 10}},
		{"exact width graphics cells", image.Pt(100, 50), ExactWidth(5), graphics, Size{Cols: 5, Rows: 2}},
		{"free axis floored at one", image.Pt(200, 1), ExactWidth(1), text, Size{Cols: 1, Rows: 1}},
		{"wide aspect, narrow width", image.Pt(2, 1), ExactWidth(1), text, Size{Cols: 1, Rows: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSize(tt.original, tt.mode, tt.geom, DefaultAllowance, Size{Cols: 80, Rows: 24}, nil)
			if err != nil {
				t.Fatalf("ResolveSize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveSizeExactRoundTrip(t *testing.T) {
	// Fixing the derived axis of an exact resolution must give back a size
	// within one cell of the first result.
	text := TextCellGeometry(0.5)
	original := image.Pt(317, 199)

	byWidth, err := ResolveSize(original, ExactWidth(64), text, DefaultAllowance, Size{Cols: 200, Rows: 100}, nil)
	if err != nil {
		t.Fatalf("ResolveSize(width) error = %v", err)
	}
	byHeight, err := ResolveSize(original, ExactHeight(byWidth.Rows), text, DefaultAllowance, Size{Cols: 200, Rows: 100}, nil)
	if err != nil {
		t.Fatalf("ResolveSize(height) error = %v", err)
	}
	if diff := byHeight.Cols - byWidth.Cols; diff < -1 || diff > 1 {
		t.Errorf("round trip drifted: width-first %v, height-first %v", byWidth, byHeight)
	}
}

func TestResolveSizeOriginalAndAuto(t *testing.T) {
	text := TextCellGeometry(0.5)
	original := image.Pt(100, 50)

	got, err := ResolveSize(original, OriginalSize, text, DefaultAllowance, Size{Cols: 80, Rows: 24}, nil)
	if err != nil {
		t.Fatalf("ResolveSize(original) error = %v", err)
	}
	if want := (Size{Cols: 100, Rows: 25}); got != want {
		t.Errorf("OriginalSize = %v, want %v", got, want)
	}

	// Auto resolves to the original size when it fits.
	got, err = ResolveSize(original, AutoSize, text, DefaultAllowance, Size{Cols: 200, Rows: 60}, nil)
	if err != nil {
		t.Fatalf("ResolveSize(auto, large) error = %v", err)
	}
	if want := (Size{Cols: 100, Rows: 25}); got != want {
		t.Errorf("AutoSize(large) = %v, want %v", got, want)
	}

	// And to FitWithin when it does not.
	got, err = ResolveSize(original, AutoSize, text, DefaultAllowance, Size{Cols: 80, Rows: 26}, nil)
	if err != nil {
		t.Fatalf("ResolveSize(auto, small) error = %v", err)
	}
	if want := (Size{Cols: 80, Rows: 20}); got != want {
		t.Errorf("AutoSize(small) = %v, want %v", got, want)
	}
}

func TestResolveSizeFitToWidth(t *testing.T) {
	text := TextCellGeometry(0.5)

	// The height is exempt from vertical limits: five available lines do
	// not constrain a thirteen-line result.
	got, err := ResolveSize(image.Pt(100, 50), FitToWidth, text, DefaultAllowance, Size{Cols: 50, Rows: 5}, nil)
	if err != nil {
		t.Fatalf("ResolveSize() error = %v", err)
	}
	if want := (Size{Cols: 50, Rows: 13}); got != want {
		t.Errorf("FitToWidth = %v, want %v", got, want)
	}
}

func TestResolveSizeMaxSize(t *testing.T) {
	text := TextCellGeometry(0.5)

	t.Run("replaces available space", func(t *testing.T) {
		max := Size{Cols: 40, Rows: 10}
		// The terminal is tiny; maxSize wins and allowances are ignored.
		got, err := ResolveSize(image.Pt(100, 50), FitWithin, text, Allowance{Horizontal: 70, Vertical: 20}, Size{Cols: 5, Rows: 3}, &max)
		if err != nil {
			t.Fatalf("ResolveSize() error = %v", err)
		}
		if got != max {
			t.Errorf("ResolveSize() = %v, want %v", got, max)
		}
	})

	t.Run("exact result checked against it", func(t *testing.T) {
		max := Size{Cols: 50, Rows: 50}
		_, err := ResolveSize(image.Pt(100, 50), ExactWidth(100), text, DefaultAllowance, Size{Cols: 200, Rows: 100}, &max)
		var sizeErr *SizeError
		if !errors.As(err, &sizeErr) {
			t.Fatalf("ResolveSize() error = %v, want *SizeError", err)
		}
	})

	t.Run("fit-to-width result checked against it", func(t *testing.T) {
		max := Size{Cols: 50, Rows: 5}
		_, err := ResolveSize(image.Pt(100, 50), FitToWidth, text, DefaultAllowance, Size{Cols: 80, Rows: 24}, &max)
		var sizeErr *SizeError
		if !errors.As(err, &sizeErr) {
			t.Fatalf("ResolveSize() error = %v, want *SizeError", err)
		}
	})
}

func TestResolveSizeErrors(t *testing.T) {
	text := TextCellGeometry(0.5)
	avail := Size{Cols: 80, Rows: 24}

	tests := []struct {
		name     string
		original image.Point
		mode     SizingMode
		allow    Allowance
		avail    Size
		maxSize  *Size
		wantErr  any
	}{
		{"zero original", image.Pt(0, 50), FitWithin, DefaultAllowance, avail, nil, &ValidationError{}},
		{"negative allowance", image.Pt(10, 10), FitWithin, Allowance{Horizontal: -1}, avail, nil, &ValidationError{}},
		{"zero fixed dimension", image.Pt(10, 10), ExactWidth(0), DefaultAllowance, avail, nil, &ValidationError{}},
		{"invalid max size", image.Pt(10, 10), FitWithin, DefaultAllowance, avail, &Size{Cols: 0, Rows: 5}, &ValidationError{}},
		{"no columns left", image.Pt(10, 10), FitWithin, Allowance{Horizontal: 80}, avail, nil, &SizeError{}},
		{"no lines left", image.Pt(10, 10), FitWithin, Allowance{Vertical: 24}, avail, nil, &SizeError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSize(tt.original, tt.mode, text, tt.allow, tt.avail, tt.maxSize)
			if err == nil {
				t.Fatal("ResolveSize() error = nil")
			}
			switch tt.wantErr.(type) {
			case *ValidationError:
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("ResolveSize() error = %v, want *ValidationError", err)
				}
			case *SizeError:
				var serr *SizeError
				if !errors.As(err, &serr) {
					t.Errorf("ResolveSize() error = %v, want *SizeError", err)
				}
			}
		})
	}
}
