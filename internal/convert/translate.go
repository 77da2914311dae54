package convert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pbaille/coco2yolo/internal/coco"
	"github.com/pbaille/coco2yolo/internal/domain"
	"github.com/pbaille/coco2yolo/internal/yolo"
	"github.com/spf13/afero"
)

// ErrUnknownCategory is reported when re-indexing meets a category id
// that the document does not declare
var ErrUnknownCategory = errors.New("unknown category")

// TranslateSplit copies every .jpg of one split and writes its label file.
// Annotations that cannot be converted are logged and skipped; I/O
// failures abort the split.
func (c *Converter) TranslateSplit(doc *coco.Document, inputRoot, outputRoot string, split domain.Split, classes []string) (domain.SplitStats, error) {
	stats := domain.SplitStats{Split: split}
	inDir := filepath.Join(inputRoot, string(split))
	outDir := filepath.Join(outputRoot, string(split))

	images, err := listImages(c.fs, inDir)
	if err != nil {
		return stats, err
	}

	c.log.Info().Str("split", string(split)).Int("images", len(images)).Msg("translating split")

	idx := doc.Index()
	for _, name := range images {
		if err := copyFile(c.fs, filepath.Join(inDir, name), filepath.Join(outDir, name)); err != nil {
			return stats, err
		}
		stats.Images++

		var labels []yolo.Label
		img, ok := idx.Image(name)
		if !ok {
			stats.UnmatchedImages++
			c.log.Debug().Str("split", string(split)).Str("image", name).Msg("no image entry, writing empty label file")
		} else {
			for _, a := range idx.AnnotationsFor(img.ID) {
				label, err := c.label(idx, a, img, classes)
				if err != nil {
					stats.SkippedAnnotations++
					c.log.Warn().
						Err(err).
						Str("split", string(split)).
						Str("image", name).
						Int("annotation", a.ID).
						Msg("skipping annotation")
					continue
				}
				labels = append(labels, label)
			}
		}

		if err := writeLabels(c.fs, filepath.Join(outDir, yolo.LabelName(name)), labels); err != nil {
			return stats, err
		}
		stats.Labels++
		stats.Lines += len(labels)
	}

	c.log.Info().
		Str("split", string(split)).
		Int("labels", stats.Labels).
		Int("lines", stats.Lines).
		Int("unmatched", stats.UnmatchedImages).
		Int("skipped", stats.SkippedAnnotations).
		Msg("split done")
	return stats, nil
}

func (c *Converter) label(idx *coco.Index, a coco.Annotation, img coco.Image, classes []string) (yolo.Label, error) {
	class := a.CategoryID - 1
	if c.opts.Reindex {
		name, ok := idx.CategoryName(a.CategoryID)
		if !ok {
			return yolo.Label{}, fmt.Errorf("%w: %d", ErrUnknownCategory, a.CategoryID)
		}
		class = slices.Index(classes, name)
	}
	return yolo.NewLabel(class, a.Segmentation, img.Width, img.Height)
}

// listImages returns the .jpg files of dir in lexical order
func listImages(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("create image copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy image %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close image copy: %w", err)
	}
	return nil
}

func writeLabels(fs afero.Fs, path string, labels []yolo.Label) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create label file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := yolo.WriteLabels(bw, labels); err != nil {
		f.Close()
		return fmt.Errorf("write label file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write label file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close label file: %w", err)
	}
	return nil
}
