package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// ExportJSONL writes every record to path as one JSON object per line and
// returns the number of records written. The file is replaced atomically.
func (s *Store) ExportJSONL(path string) (int, error) {
	entries, err := s.ListAll()
	if err != nil {
		return 0, err
	}
	if err := writeJSONL(path, entries); err != nil {
		return 0, &types.PersistenceError{Op: "export", Err: err}
	}
	s.log.Info("entries exported", zap.String("path", path), zap.Int("count", len(entries)))
	return len(entries), nil
}

// writeJSONL writes entries using the temp-file, fsync, rename pattern so a
// reader never sees a partial file.
func writeJSONL(path string, entries []types.BikeEntry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, e := range entries {
		// Encode terminates each record with a newline.
		if err := enc.Encode(e); err != nil {
			return fail(fmt.Errorf("writing record %d: %w", e.ID, err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
