// Package yolo builds YOLO segmentation labels and dataset descriptors.
package yolo

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDimensions is returned when the image size is zero or missing
	ErrInvalidDimensions = errors.New("image width and height must be positive")
	// ErrNoPolygon is returned for empty or run-length encoded segmentations
	ErrNoPolygon = errors.New("annotation has no polygon")
	// ErrOddCoordinates is returned when a polygon has a dangling x value
	ErrOddCoordinates = errors.New("polygon has an odd number of coordinates")
	// ErrClassIndex is returned when category_id - 1 is below zero
	ErrClassIndex = errors.New("class index is negative")
)

// Label is one line of a label file
type Label struct {
	Class  int
	Points []float64
}

// NewLabel normalizes the first polygon of an annotation against the
// image size. Any further polygons are ignored. The input slice is not
// modified.
func NewLabel(class int, polygons [][]float64, width, height int) (Label, error) {
	if class < 0 {
		return Label{}, fmt.Errorf("%w: %d", ErrClassIndex, class)
	}
	if width <= 0 || height <= 0 {
		return Label{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(polygons) == 0 || len(polygons[0]) == 0 {
		return Label{}, ErrNoPolygon
	}
	polygon := polygons[0]
	if len(polygon)%2 != 0 {
		return Label{}, fmt.Errorf("%w: %d", ErrOddCoordinates, len(polygon))
	}

	w, h := float64(width), float64(height)
	points := make([]float64, len(polygon))
	for i := 0; i < len(polygon); i += 2 {
		points[i] = polygon[i] / w
		points[i+1] = polygon[i+1] / h
	}
	return Label{Class: class, Points: points}, nil
}

// String formats the label as "<class> <x1> <y1> ... <xn> <yn>"
func (l Label) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(l.Class))
	for _, p := range l.Points {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(p, 'f', -1, 64))
	}
	return sb.String()
}

// WriteLabels writes one line per label
func WriteLabels(w io.Writer, labels []Label) error {
	for _, l := range labels {
		if _, err := io.WriteString(w, l.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// LabelName maps an image file name to its label file name
func LabelName(imageName string) string {
	return strings.TrimSuffix(imageName, ".jpg") + ".txt"
}
