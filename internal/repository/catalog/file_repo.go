package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/jimlawless/whereami"
)

// FileRepo читает каталог из локального JSON-файла.
type FileRepo struct {
	path string
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (f *FileRepo) Load(_ context.Context) ([]domain.CatalogEntry, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%s: %w", f.path, e.ErrCatalogNotFound))
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer file.Close()

	entries, err := Decode(file)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return entries, nil
}
