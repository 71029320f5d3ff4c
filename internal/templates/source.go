package templates

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/finboard/report_engine/internal/apperrors"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
)

// DirSource reads report template definitions from a directory on disk.
type DirSource struct {
	dir string
}

// NewDirSource creates a template source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

var _ portssvc.TemplateSource = (*DirSource)(nil)

// ReadTemplate returns the raw bytes of the named template. The name is a
// bare file name; path separators are rejected so a template name can never
// escape the root directory.
func (s *DirSource) ReadTemplate(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid template name %q", apperrors.ErrValidation, name)
	}
	contents, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if _, ok := err.(*fs.PathError); ok && os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: template %s", apperrors.ErrNotFound, name)
		}
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return contents, nil
}
