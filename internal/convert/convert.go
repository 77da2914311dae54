package convert

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pbaille/coco2yolo/internal/archive"
	"github.com/pbaille/coco2yolo/internal/coco"
	"github.com/pbaille/coco2yolo/internal/domain"
	"github.com/pbaille/coco2yolo/internal/yolo"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options controls a conversion
type Options struct {
	// Reindex writes class indices by position in the descriptor's class
	// list instead of category_id - 1.
	Reindex   bool
	NoArchive bool
	Logger    zerolog.Logger
}

// Result summarizes a finished conversion
type Result struct {
	Output  string
	Archive string
	Classes []string
	Splits  []domain.SplitStats
}

// Converter turns a COCO dataset tree into a YOLO dataset tree
type Converter struct {
	fs   afero.Fs
	opts Options
	log  zerolog.Logger
}

// New creates a Converter working on fs
func New(fs afero.Fs, opts Options) *Converter {
	return &Converter{fs: fs, opts: opts, log: opts.Logger}
}

// Convert reads the dataset under input and produces output and output.zip.
// Everything is built in a staging directory next to output and only moved
// into place once every stage has succeeded.
func (c *Converter) Convert(input, output string) (*Result, error) {
	output = filepath.Clean(output)

	docs, err := coco.LoadSplits(c.fs, input)
	if err != nil {
		return nil, err
	}
	classes := CollectClasses(docs)
	if !c.opts.Reindex {
		for _, m := range CheckClassAlignment(docs, classes) {
			c.log.Warn().
				Str("split", string(m.Split)).
				Int("category_id", m.CategoryID).
				Str("category", m.Name).
				Str("listed", m.Listed).
				Msg("class index does not match descriptor order")
		}
	}

	runID := uuid.NewString()
	suffix := ".tmp-" + runID
	staging := filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+suffix)
	zipPath := output + ".zip"
	zipTmp := zipPath + suffix

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = c.fs.RemoveAll(staging)
		_ = c.fs.Remove(zipTmp)
	}()

	if err := MaterializeSplits(c.fs, staging); err != nil {
		return nil, err
	}

	res := &Result{Output: output, Classes: classes}
	for _, split := range domain.Splits {
		stats, err := c.TranslateSplit(docs[split], input, staging, split, classes)
		if err != nil {
			return nil, err
		}
		res.Splits = append(res.Splits, stats)
	}

	if err := yolo.WriteDescriptor(c.fs, staging, classes); err != nil {
		return nil, err
	}

	if !c.opts.NoArchive {
		if err := archive.Zip(c.fs, staging, zipTmp); err != nil {
			return nil, err
		}
	}

	// Keep the previous output until the new one is in place
	backup := ""
	if exists, err := afero.Exists(c.fs, output); err != nil {
		return nil, fmt.Errorf("stat previous output: %w", err)
	} else if exists {
		backup = filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".old-"+runID)
		if err := c.fs.Rename(output, backup); err != nil {
			return nil, fmt.Errorf("move previous output aside: %w", err)
		}
	}
	if err := c.fs.Rename(staging, output); err != nil {
		if backup != "" {
			if rerr := c.fs.Rename(backup, output); rerr != nil {
				c.log.Error().Err(rerr).Str("backup", backup).Msg("couldn't restore previous output")
			}
		}
		return nil, fmt.Errorf("move output into place: %w", err)
	}
	committed = true
	if backup != "" {
		if err := c.fs.RemoveAll(backup); err != nil {
			c.log.Warn().Err(err).Str("backup", backup).Msg("couldn't remove previous output")
		}
	}

	if !c.opts.NoArchive {
		if err := c.fs.Rename(zipTmp, zipPath); err != nil {
			_ = c.fs.Remove(zipTmp)
			return nil, fmt.Errorf("move archive into place: %w", err)
		}
		res.Archive = zipPath
	}

	c.log.Info().
		Str("output", output).
		Int("classes", len(classes)).
		Msg("conversion finished")
	return res, nil
}

// MaterializeSplits creates root and one directory per split
func MaterializeSplits(fs afero.Fs, root string) error {
	for _, split := range domain.Splits {
		if err := fs.MkdirAll(filepath.Join(root, string(split)), 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", split, err)
		}
	}
	return nil
}
