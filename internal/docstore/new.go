package docstore

import (
	"fmt"
	"os"
	"sync"

	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

const blockDelimiter = "<!-- block -->"

type implStore struct {
	dir    string
	logger logger.Logger
	mu     sync.Mutex
}

// New creates a Store that keeps one markdown file per reference in dir.
func New(dir string, log logger.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}

	return &implStore{
		dir:    dir,
		logger: log,
	}, nil
}
