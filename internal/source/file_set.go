package source

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns every file read during one invocation. Spans refer to
// files by FileID; 0 is reserved for synthetic spans.
//
// Loading is sequential (include resolution); once loaded, files may be
// read from several goroutines.
type FileSet struct {
	files   []File
	byPath  map[string]FileID
	baseDir string // относительно неё печатаются пути
}

// NewFileSet creates an empty FileSet based at the working directory.
func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase creates an empty FileSet; baseDir "" means the
// process working directory.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{
		files:   make([]File, 1, 16),
		byPath:  make(map[string]FileID),
		baseDir: baseDir,
	}
}

// BaseDir is the directory relative paths are rendered against.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir != "" {
		return fileSet.baseDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Add stores content under path. Adding a path again creates a new
// version and Lookup returns the newest one.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fileSet.byPath[path] = id
	return id
}

// Load reads path from disk once. A leading BOM is stripped and CRLF
// line ends become LF; the flags record both.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	if id, ok := fileSet.Lookup(path); ok {
		return id, nil
	}
	// #nosec G304 -- paths come from the command line and INCLUDE directives
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}
	var flags FileFlags
	if trimmed, ok := removeBOM(content); ok {
		content = trimmed
		flags |= FileHadBOM
	}
	if normalized, ok := normalizeCRLF(content); ok {
		content = normalized
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (stdin, tests).
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns nil for NoFileID and unknown IDs.
func (fileSet *FileSet) Get(id FileID) *File {
	if !id.IsValid() || int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// Len is the number of stored files, versions included.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files) - 1
}

// Lookup returns the newest version of path.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fileSet.byPath[normalizePath(path)]
	return id, ok
}

// LineCount is the number of lines; a trailing newline does not open a new one.
func (f *File) LineCount() int {
	n := len(f.LineIdx)
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// GetLine returns line lineNum (1-based) without its newline, "" when
// out of range.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || int(lineNum) > f.LineCount() {
		return ""
	}
	i := int(lineNum) - 1
	start := 0
	if i > 0 {
		start = int(f.LineIdx[i-1]) + 1
	}
	end := len(f.Content)
	if i < len(f.LineIdx) {
		end = int(f.LineIdx[i])
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path: "absolute", "relative" (to baseDir),
// "basename" or "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		// длинный абсолютный путь сокращаем до имени файла
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
