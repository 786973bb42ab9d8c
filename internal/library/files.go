package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"yotdl/internal/services"
)

// FileInfo describes one completed download on disk.
type FileInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	ModTime   time.Time `json:"modified"`
}

// Manager exposes the completed-download directory: listing, deletion, and
// path resolution for serving. Every entry name it accepts is validated
// against directory escape.
type Manager struct {
	root string
}

// NewManager constructs a manager rooted at the download directory.
func NewManager(root string) (*Manager, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("library root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve library root: %w", err)
	}
	return &Manager{root: abs}, nil
}

// Root returns the managed directory.
func (m *Manager) Root() string {
	return m.root
}

// List returns the regular files in the library, newest first. Hidden
// entries (including the in-flight work directory) are skipped.
func (m *Manager) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read library: %w", err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:      entry.Name(),
			Size:      info.Size(),
			SizeHuman: humanize.IBytes(uint64(info.Size())),
			ModTime:   info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Delete removes a file from the library.
func (m *Manager) Delete(name string) error {
	path, err := m.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrNotFound, "library", "delete",
				fmt.Sprintf("no file named %s", name), nil)
		}
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Resolve maps an entry name to its absolute path, refusing anything that
// would land outside the library root.
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", services.Wrap(services.ErrForbidden, "library", "resolve",
			fmt.Sprintf("invalid file name %q", name), nil)
	}
	path := filepath.Join(m.root, name)
	if !strings.HasPrefix(path, m.root+string(os.PathSeparator)) {
		return "", services.Wrap(services.ErrForbidden, "library", "resolve",
			fmt.Sprintf("file name %q escapes the library", name), nil)
	}
	return path, nil
}

// Stat reports a single library entry.
func (m *Manager) Stat(name string) (FileInfo, error) {
	path, err := m.Resolve(name)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, services.Wrap(services.ErrNotFound, "library", "stat",
				fmt.Sprintf("no file named %s", name), nil)
		}
		return FileInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return FileInfo{}, services.Wrap(services.ErrNotFound, "library", "stat",
			fmt.Sprintf("no file named %s", name), nil)
	}
	return FileInfo{
		Name:      info.Name(),
		Size:      info.Size(),
		SizeHuman: humanize.IBytes(uint64(info.Size())),
		ModTime:   info.ModTime(),
	}, nil
}

// TotalSize sums the sizes of every listed file, for stats reporting.
func (m *Manager) TotalSize() (int64, error) {
	files, err := m.List()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, file := range files {
		total += file.Size
	}
	return total, nil
}
