package store

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ptimer/ptimer/pkg/logger"
)

// Backend kinds accepted by Open.
const (
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// Open builds the backend of the given kind under dataDir.
func Open(kind, dataDir string, l logger.Logger) (Backend, error) {
	switch kind {
	case "", KindJSON:
		return NewFileBackend(afero.NewOsFs(), filepath.Join(dataDir, "records"), l)
	case KindSQLite:
		return OpenSQLite(filepath.Join(dataDir, "ptimer.db"))
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
