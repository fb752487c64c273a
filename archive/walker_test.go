package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

type zipEntry struct {
	name    string
	content string
	nonUTF8 bool
}

func makeZip(t *testing.T, entries []zipEntry) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "icons.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t, []zipEntry{
		{name: "icons/star.svg", content: "<svg/>"},
		{name: "icons/heart.svg", content: "<svg/>"},
		{name: "logos/brand.svg", content: "<svg/>"},
		{name: "logos/brand.png", content: "png"},
		{name: "README.md", content: "readme"},
	})

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{name: "icons prefix", pattern: "icons/", want: 2},
		{name: "logos prefix", pattern: "logos/", want: 2},
		{name: "single file", pattern: "logos/brand.svg", want: 1},
		{name: "no match", pattern: "nonexistent/", want: 0},
		{name: "empty prefix", pattern: "", want: 5},
		{name: "case sensitive", pattern: "Icons/", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.pattern, nil, func(archive, name string, file *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				if name != file.Name {
					t.Errorf("name = %s, want %s", name, file.Name)
				}
				visited = append(visited, name)
				return nil
			})
			if err != nil {
				t.Errorf("Walk() error = %v", err)
			}
			if len(visited) != tt.want {
				t.Errorf("visited %d files (%v), want %d", len(visited), visited, tt.want)
			}
		})
	}
}

func TestWalk_Errors(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		if err := Walk("/nonexistent/file.zip", "", nil, func(string, string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}
		if err := Walk(invalidZip, "", nil, func(string, string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("walkFn stops walk", func(t *testing.T) {
		zipPath := makeZip(t, []zipEntry{{name: "a.svg"}, {name: "b.svg"}, {name: "c.svg"}})

		stopErr := errors.New("stop walking")
		visited := 0
		err := Walk(zipPath, "", nil, func(string, string, *zip.File) error {
			visited++
			if visited == 2 {
				return stopErr
			}
			return nil
		})
		if !errors.Is(err, stopErr) {
			t.Errorf("Walk() error = %v, want %v", err, stopErr)
		}
		if visited != 2 {
			t.Errorf("visited %d files, want 2", visited)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := makeZip(t, []zipEntry{{name: "../evil.svg"}})
		if err := Walk(zipPath, "", nil, func(string, string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for unsafe entry")
		}
	})
}

func TestWalk_SkipsDirectories(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	dirHeader := &zip.FileHeader{Name: "icons/"}
	dirHeader.SetMode(os.ModeDir | 0755)
	if _, err := w.CreateHeader(dirHeader); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	fw, err := w.Create("icons/star.svg")
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	fw.Write([]byte("<svg/>"))
	w.Close()
	zipFile.Close()

	var visited []string
	if err := Walk(zipPath, "icons/", nil, func(_, name string, _ *zip.File) error {
		visited = append(visited, name)
		return nil
	}); err != nil {
		t.Errorf("Walk() error = %v", err)
	}
	if len(visited) != 1 || visited[0] != "icons/star.svg" {
		t.Errorf("visited %v, want [icons/star.svg]", visited)
	}
}

func TestWalk_FileContent(t *testing.T) {
	content := []byte(`<svg viewBox="0 0 1 1"/>`)
	zipPath := makeZip(t, []zipEntry{{name: "a.svg", content: string(content)}})

	err := Walk(zipPath, "", nil, func(_, _ string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		if !bytes.Equal(buf.Bytes(), content) {
			t.Errorf("content = %s, want %s", buf.Bytes(), content)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestEntryName_CodePage(t *testing.T) {
	// "звезда.svg" in cp866
	raw, err := charmap.CodePage866.NewEncoder().String("звезда.svg")
	if err != nil {
		t.Fatalf("unable to encode name: %v", err)
	}
	zipPath := makeZip(t, []zipEntry{{name: raw, nonUTF8: true}})

	var names []string
	if err := Walk(zipPath, "", charmap.CodePage866, func(_, name string, _ *zip.File) error {
		names = append(names, name)
		return nil
	}); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(names) != 1 || names[0] != "звезда.svg" {
		t.Errorf("names = %q, want [звезда.svg]", names)
	}

	// without forced code page name is left alone
	names = names[:0]
	if err := Walk(zipPath, "", nil, func(_, name string, _ *zip.File) error {
		names = append(names, name)
		return nil
	}); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(names) != 1 || names[0] != raw {
		t.Errorf("names = %q, want raw name", names)
	}
}

func TestIsArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := makeZip(t, []zipEntry{{name: "a.svg", content: "<svg/>"}})

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "valid zip", path: zipPath, want: true},
		{name: "svg", path: write("a.svg", "<svg/>"), want: false},
		{name: "zip extension invalid content", path: write("fake.zip", "not a real zip file"), want: false},
		{name: "empty zip file", path: write("empty.zip", ""), want: false},
		{name: "zip content wrong extension", path: write("icons.dat", "PK\x03\x04rest"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsArchive(tt.path)
			if err != nil {
				t.Fatalf("IsArchive() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsArchive() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := IsArchive(filepath.Join(dir, "missing.zip")); err == nil {
		t.Error("Expected error for missing file")
	}
}
