package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
)

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_\-]+`)

func (s *implStore) path(ref string) (string, error) {
	name := strings.Trim(reUnsafe.ReplaceAllString(ref, "_"), "_")
	if name == "" {
		return "", fmt.Errorf("%w: invalid document ref %q", failure.ErrData, ref)
	}
	return filepath.Join(s.dir, name+".md"), nil
}

func (s *implStore) AppendBlock(ctx context.Context, ref, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", failure.ErrTransientUpstream, path, err)
	}

	block := blockDelimiter + "\n" + strings.TrimRight(text, "\n") + "\n"
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("%w: append to %s: %v", failure.ErrTransientUpstream, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", failure.ErrTransientUpstream, path, err)
	}

	s.logger.Debug(ctx, "Appended %d chars to %s", len(text), ref)
	return nil
}

func (s *implStore) FetchLatestBlock(ctx context.Context, ref string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := s.path(ref)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: read %s: %v", failure.ErrTransientUpstream, path, err)
	}

	blocks := splitBlocks(string(data))
	if len(blocks) == 0 {
		return "", false, nil
	}

	start := len(blocks) - 1
	for i := len(blocks) - 1; i >= 0; i-- {
		if strings.HasPrefix(blocks[i], SessionStartMarker) {
			start = i
			break
		}
	}

	content := strings.Join(blocks[start:], "\n\n")
	return content, content != "", nil
}

func splitBlocks(doc string) []string {
	var blocks []string
	for _, b := range strings.Split(doc, blockDelimiter+"\n") {
		b = strings.TrimSpace(b)
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
