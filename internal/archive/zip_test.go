package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

func TestZip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/out/data.yaml":   "nc: 0\n",
		"/out/train/a.jpg": "\xff\xd8\xff\xe0jpeg",
		"/out/train/a.txt": "2 0.1 0.1 0.2 0.2\n",
		"/out/valid/b.txt": "",
	}
	for path, content := range files {
		if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := fsys.MkdirAll("/out/test", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Zip(fsys, "/out", "/out.zip"); err != nil {
		t.Fatalf("zip: %v", err)
	}

	data, err := afero.ReadFile(fsys, "/out.zip")
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if want := files["/out/"+f.Name]; string(got) != want {
			t.Errorf("%s: got %q, want %q", f.Name, got, want)
		}
	}

	want := []string{"data.yaml", "test/", "train/", "train/a.jpg", "train/a.txt", "valid/", "valid/b.txt"}
	sort.Strings(names)
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}
}

func TestZipMissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := Zip(fsys, "/missing", "/missing.zip"); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}
