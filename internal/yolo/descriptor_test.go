package yolo

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteDescriptor(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/out", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := WriteDescriptor(fsys, "/out", []string{"cat", "dog", "bird"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := afero.ReadFile(fsys, "/out/"+DescriptorFile)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"train: train\n",
		"val: valid\n",
		"test: test\n",
		"nc: 3\n",
		"names: [cat, dog, bird]\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("descriptor missing %q:\n%s", want, text)
		}
	}
	if !strings.HasPrefix(text, "path:") {
		t.Errorf("descriptor should start with path:\n%s", text)
	}

	d, err := ReadDescriptor(fsys, "/out/"+DescriptorFile)
	if err != nil {
		t.Fatalf("read descriptor: %v", err)
	}
	if d.Path != "" || d.NamesCount != 3 || len(d.Names) != 3 || d.Names[2] != "bird" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}

func TestWriteDescriptorNoClasses(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := WriteDescriptor(fsys, "/", nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, _ := afero.ReadFile(fsys, "/"+DescriptorFile)
	if !strings.Contains(string(data), "nc: 0\n") || !strings.Contains(string(data), "names: []\n") {
		t.Fatalf("unexpected descriptor:\n%s", data)
	}
}

func TestWriteDescriptorQuotesNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	names := []string{"traffic light", "yes", "a: b"}
	if err := WriteDescriptor(fsys, "/", names); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := ReadDescriptor(fsys, "/"+DescriptorFile)
	if err != nil {
		t.Fatalf("read descriptor: %v", err)
	}
	for i, n := range names {
		if d.Names[i] != n {
			t.Fatalf("name %d = %q, want %q", i, d.Names[i], n)
		}
	}
}
