package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AcceptedExtensions are the spreadsheet suffixes the portal API parses.
var AcceptedExtensions = []string{".xlsx", ".csv"}

// File is a spreadsheet picked for upload. It can be opened more than once,
// so a failed upload can be retried.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// FileInfo is the part of File the rendering layer shows.
type FileInfo struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

// FileFromPath stats path and returns a File that reads it lazily.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat upload file: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("stat upload file: %s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content, e.g. a multipart part received by
// the bridge server.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	return f.open()
}

func (f File) Extension() string {
	return filepath.Ext(f.Name)
}

func (f File) Info() FileInfo {
	return FileInfo{Name: f.Name, Size: f.Size, Extension: f.Extension()}
}

// hasAcceptedExtension matches the suffix exactly as named; "DATA.XLSX" is
// refused like the browser file picker's filter would.
func hasAcceptedExtension(name string) bool {
	for _, ext := range AcceptedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
