package coco

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pbaille/coco2yolo/internal/domain"
	"github.com/spf13/afero"
)

// AnnotationsFile is the document name expected in every split directory
const AnnotationsFile = "_annotations.coco.json"

// Document is a COCO annotation file
type Document struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// Image describes one image entry
type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is a single labeled object
type Annotation struct {
	ID           int          `json:"id"`
	ImageID      int          `json:"image_id"`
	CategoryID   int          `json:"category_id"`
	Segmentation Segmentation `json:"segmentation"`
}

// Category maps a category id to its name
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory,omitempty"`
}

// Segmentation holds polygons as flat x,y lists.
// Run-length encoded masks decode to no polygons.
type Segmentation [][]float64

// UnmarshalJSON accepts a polygon list and ignores any other form
func (s *Segmentation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*s = nil
		return nil
	}
	var polygons [][]float64
	if err := json.Unmarshal(data, &polygons); err != nil {
		return err
	}
	*s = polygons
	return nil
}

// Load reads and decodes the document at path
func Load(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer f.Close()

	var doc Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, nil
}

// LoadSplits loads the document of every split under root
func LoadSplits(fs afero.Fs, root string) (map[domain.Split]*Document, error) {
	docs := make(map[domain.Split]*Document, len(domain.Splits))
	for _, split := range domain.Splits {
		doc, err := Load(fs, filepath.Join(root, string(split), AnnotationsFile))
		if err != nil {
			return nil, fmt.Errorf("load %s annotations: %w", split, err)
		}
		docs[split] = doc
	}
	return docs, nil
}

// Index answers per-image lookups over a document
type Index struct {
	byName        map[string]Image
	byImage       map[int][]Annotation
	categoryNames map[int]string
}

// Index builds lookup tables. The first image with a given file name wins,
// and annotations keep their document order.
func (d *Document) Index() *Index {
	idx := &Index{
		byName:        make(map[string]Image, len(d.Images)),
		byImage:       make(map[int][]Annotation),
		categoryNames: make(map[int]string, len(d.Categories)),
	}
	for _, img := range d.Images {
		if _, ok := idx.byName[img.FileName]; !ok {
			idx.byName[img.FileName] = img
		}
	}
	for _, a := range d.Annotations {
		idx.byImage[a.ImageID] = append(idx.byImage[a.ImageID], a)
	}
	for _, c := range d.Categories {
		if _, ok := idx.categoryNames[c.ID]; !ok {
			idx.categoryNames[c.ID] = c.Name
		}
	}
	return idx
}

// Image returns the entry for fileName
func (i *Index) Image(fileName string) (Image, bool) {
	img, ok := i.byName[fileName]
	return img, ok
}

// AnnotationsFor returns the annotations of an image in document order
func (i *Index) AnnotationsFor(imageID int) []Annotation {
	return i.byImage[imageID]
}

// CategoryName returns the name of a category id
func (i *Index) CategoryName(id int) (string, bool) {
	name, ok := i.categoryNames[id]
	return name, ok
}
