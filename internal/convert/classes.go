package convert

import (
	"github.com/pbaille/coco2yolo/internal/coco"
	"github.com/pbaille/coco2yolo/internal/domain"
)

// CollectClasses returns the distinct category names of all splits in
// first-seen order: train, valid, test, each in document order.
func CollectClasses(docs map[domain.Split]*coco.Document) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, split := range domain.Splits {
		doc := docs[split]
		if doc == nil {
			continue
		}
		for _, c := range doc.Categories {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// Misalignment is a category whose category_id - 1 does not point at its
// own name in the class list
type Misalignment struct {
	Split      domain.Split
	CategoryID int
	Name       string
	Listed     string
}

// CheckClassAlignment reports every category that would be written with a
// class index naming a different class in the descriptor. Categories no
// annotation refers to, such as an export's id 0 supercategory, never reach
// a label file and are not reported.
func CheckClassAlignment(docs map[domain.Split]*coco.Document, names []string) []Misalignment {
	var out []Misalignment
	for _, split := range domain.Splits {
		doc := docs[split]
		if doc == nil {
			continue
		}
		used := make(map[int]bool)
		for _, a := range doc.Annotations {
			used[a.CategoryID] = true
		}
		for _, c := range doc.Categories {
			if !used[c.ID] {
				continue
			}
			i := c.ID - 1
			var listed string
			if i >= 0 && i < len(names) {
				listed = names[i]
			}
			if listed != c.Name {
				out = append(out, Misalignment{Split: split, CategoryID: c.ID, Name: c.Name, Listed: listed})
			}
		}
	}
	return out
}
