package repo

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"
)

// Stats returns aggregate metadata for the ledger, used by the HTTP layer
// for conditional export responses (ETag generation).
//
// Return values:
//   - count:   number of order rows
//   - modTime: pointer to the file's modification time, or nil if the ledger does not exist
//   - err:     *PersistenceError when the file exists but cannot be read
func (l *Ledger) Stats(ctx context.Context) (count int64, modTime *time.Time, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fi, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, &PersistenceError{Op: "read", Path: l.path, Err: err}
	}

	recs, err := l.readLocked()
	if err != nil {
		return 0, nil, err
	}
	mt := fi.ModTime().UTC()
	return int64(len(recs)), &mt, nil
}
