package binary

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractZip extracts a zip archive into destDir, creating it if needed.
// Every entry is checked before anything is written, so an archive with a
// single unsafe path leaves the filesystem untouched. Existing files are
// overwritten, which makes repeated extraction idempotent.
func (e *Extractor) ExtractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("open archive: %w", err)
		}
		return fmt.Errorf("%w: %s: %w", ErrArchiveFormat, archivePath, err)
	}
	defer reader.Close()

	root := filepath.Clean(destDir)
	targets := make([]string, len(reader.File))
	for i, f := range reader.File {
		target, err := safeJoin(root, f.Name)
		if err != nil {
			return err
		}
		targets[i] = target
	}

	if _, err := prepareDest(root); err != nil {
		return err
	}

	for i, f := range reader.File {
		target := targets[i]
		mode := f.Mode()

		switch {
		case strings.HasSuffix(f.Name, "/") || mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case mode.IsRegular():
			if err := extractZipFile(f, target); err != nil {
				return err
			}

		default:
			// Skip symlinks and other special entries
			continue
		}
	}

	return nil
}

func extractZipFile(f *zip.File, target string) error {
	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %w", ErrArchiveFormat, f.Name, err)
	}
	defer rc.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	// Copy file contents
	if _, err := io.Copy(outFile, entryReader{rc}); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}

// entryReader marks read failures as archive corruption so they can be
// told apart from write failures on the destination.
type entryReader struct {
	r io.Reader
}

func (e entryReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: %w", ErrArchiveFormat, err)
	}
	return n, err
}

// prepareDest creates destDir if it is missing and returns its cleaned path.
func prepareDest(destDir string) (string, error) {
	root := filepath.Clean(destDir)

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return "", fmt.Errorf("%s: %w", root, ErrDestinationNotDirectory)
	case err == nil:
		return root, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("stat dest dir: %w", err)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}
	return root, nil
}

// safeJoin joins an archive entry name under root and rejects names that
// are absolute, carry a volume, or climb out of root. Backslashes count as
// separators since archives built on Windows sometimes contain them.
func safeJoin(root, name string) (string, error) {
	clean := strings.ReplaceAll(name, `\`, "/")
	if clean == "" || strings.HasPrefix(clean, "/") || hasDriveLetter(clean) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	target := filepath.Join(root, filepath.FromSlash(clean))
	if !within(root, target) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
