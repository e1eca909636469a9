package server

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrArtifactNotFound is returned when a completed fetch left no resolvable file behind
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrFileNotFound is returned when a requested file does not exist in the download directory
	ErrFileNotFound = errors.New("file not found")

	// ErrNotRegularFile is returned when a requested name resolves to something other than a regular file
	ErrNotRegularFile = errors.New("not a regular file")
)

// artifactIDLength is the number of hex characters in an artifact id
const artifactIDLength = 8

// readDirBatch is how many directory entries are read per syscall while enumerating
const readDirBatch = 64

// scratchSuffixes are extensions the engine uses for files still being written
var scratchSuffixes = []string{".part", ".ytdl", ".temp", ".tmp"}

// Artifact is a downloaded file owned by the artifact store
type Artifact struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ArtifactEntry is a single directory entry produced while enumerating the store
type ArtifactEntry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	Regular bool
}

// ArtifactStore owns the download directory and the lifetime of every file in it
type ArtifactStore interface {
	// Dir returns the managed directory
	Dir() string

	// AllocateID returns a fresh artifact id
	AllocateID() string

	// OutputTemplate returns the engine output template for an artifact id
	OutputTemplate(id string) string

	// ResolveProduced locates the file a fetch wrote for the given id
	ResolveProduced(id, declaredPath string) (*Artifact, error)

	// SafeResolve maps a caller supplied name to a regular file inside the directory
	SafeResolve(name string) (string, error)

	// Open opens a caller supplied name for reading
	Open(name string) (*os.File, os.FileInfo, error)

	// Entries enumerates the directory lazily
	Entries() iter.Seq2[ArtifactEntry, error]

	// Delete removes a file; removing a missing file is not an error
	Delete(name string) error
}

var _ ArtifactStore = (*FilesystemArtifactStore)(nil)

// FilesystemArtifactStore implements ArtifactStore on a local directory
type FilesystemArtifactStore struct {
	basePath string
}

// NewFilesystemArtifactStore creates the download directory if needed and returns a store for it
func NewFilesystemArtifactStore(basePath string) (*FilesystemArtifactStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("download directory must not be empty")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	return &FilesystemArtifactStore{basePath: abs}, nil
}

// Dir returns the absolute path of the managed directory
func (fs *FilesystemArtifactStore) Dir() string {
	return fs.basePath
}

// AllocateID returns the first 8 hex characters of a random UUID, 32 bits of entropy
func (fs *FilesystemArtifactStore) AllocateID() string {
	return uuid.New().String()[:artifactIDLength]
}

// OutputTemplate builds a yt-dlp output template that prefixes the final name with the id,
// so the file can be found by prefix even when the title based name is not predictable.
func (fs *FilesystemArtifactStore) OutputTemplate(id string) string {
	return filepath.Join(fs.basePath, id+"_%(title)s.%(ext)s")
}

// ResolveProduced verifies the path the engine reported and falls back to a prefix scan
func (fs *FilesystemArtifactStore) ResolveProduced(id, declaredPath string) (*Artifact, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty artifact id", ErrArtifactNotFound)
	}

	if declaredPath != "" {
		if abs, err := filepath.Abs(declaredPath); err == nil && filepath.Dir(abs) == fs.basePath {
			if artifact, err := fs.artifactFor(id, filepath.Base(abs)); err == nil {
				return artifact, nil
			}
		}
	}

	prefix := id + "_"
	var candidates []string
	for entry, err := range fs.Entries() {
		if err != nil {
			return nil, fmt.Errorf("failed to scan download directory: %w", err)
		}
		if !entry.Regular || !strings.HasPrefix(entry.Name, prefix) || isScratchFile(entry.Name) {
			continue
		}
		candidates = append(candidates, entry.Name)
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: no file with prefix %s", ErrArtifactNotFound, prefix)
	case 1:
		return fs.artifactFor(id, candidates[0])
	default:
		return nil, fmt.Errorf("%w: %d files share prefix %s", ErrArtifactNotFound, len(candidates), prefix)
	}
}

// artifactFor stats a file directly inside the directory and builds its Artifact
func (fs *FilesystemArtifactStore) artifactFor(id, name string) (*Artifact, error) {
	path := filepath.Join(fs.basePath, name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrArtifactNotFound, name)
	}

	return &Artifact{
		ID:        id,
		Filename:  name,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// SafeResolve keeps only the final path component of name and joins it to the directory
func (fs *FilesystemArtifactStore) SafeResolve(name string) (string, error) {
	safeName := sanitizeFilename(name)
	if safeName == "" {
		return "", ErrFileNotFound
	}

	path := filepath.Join(fs.basePath, safeName)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to check file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotRegularFile
	}

	return path, nil
}

// Open resolves name with SafeResolve and opens it
func (fs *FilesystemArtifactStore) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := fs.SafeResolve(name)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return file, info, nil
}

// Entries enumerates the directory in batches. Every call starts a fresh enumeration.
func (fs *FilesystemArtifactStore) Entries() iter.Seq2[ArtifactEntry, error] {
	return func(yield func(ArtifactEntry, error) bool) {
		dir, err := os.Open(fs.basePath)
		if err != nil {
			yield(ArtifactEntry{}, fmt.Errorf("failed to open download directory: %w", err))
			return
		}
		defer func() {
			_ = dir.Close()
		}()

		for {
			batch, err := dir.ReadDir(readDirBatch)
			for _, d := range batch {
				info, infoErr := d.Info()
				if infoErr != nil {
					// removed between listing and stat
					if os.IsNotExist(infoErr) {
						continue
					}
					if !yield(ArtifactEntry{}, infoErr) {
						return
					}
					continue
				}
				entry := ArtifactEntry{
					Name:    d.Name(),
					Path:    filepath.Join(fs.basePath, d.Name()),
					ModTime: info.ModTime(),
					Size:    info.Size(),
					Regular: info.Mode().IsRegular(),
				}
				if !yield(entry, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(ArtifactEntry{}, fmt.Errorf("failed to read download directory: %w", err))
				return
			}
		}
	}
}

// Delete removes a file from the directory
func (fs *FilesystemArtifactStore) Delete(name string) error {
	safeName := sanitizeFilename(name)
	if safeName == "" {
		return fmt.Errorf("invalid filename %q", name)
	}

	err := os.Remove(filepath.Join(fs.basePath, safeName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// sanitizeFilename returns the final path component of name, treating both slash styles as separators
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimRight(strings.TrimSpace(name), "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

func isScratchFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range scratchSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// ContentTypeFor returns the media type served for an artifact name
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "video/mp4"
	}
}
