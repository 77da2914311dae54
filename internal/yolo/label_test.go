package yolo

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewLabel(t *testing.T) {
	polygons := [][]float64{{80, 60, 160, 120}}
	l, err := NewLabel(2, polygons, 800, 600)
	if err != nil {
		t.Fatalf("new label: %v", err)
	}
	if got, want := l.String(), "2 0.1 0.1 0.2 0.2"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if polygons[0][0] != 80 {
		t.Fatalf("input polygon mutated: %v", polygons[0])
	}
}

func TestNewLabelFirstPolygonOnly(t *testing.T) {
	l, err := NewLabel(0, [][]float64{{10, 10, 20, 20}, {30, 30, 40, 40}}, 100, 100)
	if err != nil {
		t.Fatalf("new label: %v", err)
	}
	if got, want := l.String(), "0 0.1 0.1 0.2 0.2"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewLabelInRange(t *testing.T) {
	l, err := NewLabel(1, [][]float64{{0, 0, 640, 0, 640, 480, 0, 480, 321.7, 13.25}}, 640, 480)
	if err != nil {
		t.Fatalf("new label: %v", err)
	}
	for i, p := range l.Points {
		if p < 0 || p > 1 {
			t.Fatalf("point %d out of range: %v", i, p)
		}
	}
}

func TestNewLabelErrors(t *testing.T) {
	tests := []struct {
		name     string
		class    int
		polygons [][]float64
		width    int
		height   int
		want     error
	}{
		{"zero width", 0, [][]float64{{1, 2}}, 0, 10, ErrInvalidDimensions},
		{"zero height", 0, [][]float64{{1, 2}}, 10, 0, ErrInvalidDimensions},
		{"negative size", 0, [][]float64{{1, 2}}, -5, 10, ErrInvalidDimensions},
		{"no polygons", 0, nil, 10, 10, ErrNoPolygon},
		{"empty polygon", 0, [][]float64{{}}, 10, 10, ErrNoPolygon},
		{"odd coordinates", 0, [][]float64{{1, 2, 3}}, 10, 10, ErrOddCoordinates},
		{"negative class", -1, [][]float64{{1, 2}}, 10, 10, ErrClassIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLabel(tt.class, tt.polygons, tt.width, tt.height)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteLabels(t *testing.T) {
	var buf bytes.Buffer
	labels := []Label{
		{Class: 0, Points: []float64{0.5, 0.25}},
		{Class: 3, Points: []float64{0.125, 1, 0, 0.75}},
	}
	if err := WriteLabels(&buf, labels); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "0 0.5 0.25\n3 0.125 1 0 0.75\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteLabels(&buf, nil); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected empty output, got %q", buf.String())
	}
}

func TestLabelName(t *testing.T) {
	tests := map[string]string{
		"a.jpg":             "a.txt",
		"img.rf.abc123.jpg": "img.rf.abc123.txt",
		"x.jpg.jpg":         "x.jpg.txt",
	}
	for in, want := range tests {
		if got := LabelName(in); got != want {
			t.Errorf("LabelName(%q) = %q, want %q", in, got, want)
		}
	}
}
