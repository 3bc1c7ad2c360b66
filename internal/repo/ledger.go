package repo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/caked-with-love/internal/domain"
)

// PersistenceError reports a ledger that exists but cannot be read or
// written. A missing ledger file is never a PersistenceError.
type PersistenceError struct {
	Op   string // "read", "write" or "parse"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Ledger is the CSV file of submitted orders. Every append rewrites the whole
// file: the existing rows are read, the new record is appended and the result
// replaces the file atomically via a temporary sibling and rename.
//
// Appends are serialized within the process only. Two processes sharing the
// same path can still lose an update between read and rename.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// NewLedger returns a Ledger stored at path. The file is created on first append.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger's file path.
func (l *Ledger) Path() string { return l.path }

// ReadAll returns every record in file order. A missing or empty file is
// the empty ledger.
func (l *Ledger) ReadAll(ctx context.Context) ([]domain.OrderRecord, error) {
	_, span := otel.Tracer("repo/Ledger").Start(ctx, "ReadAll")
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()
	recs, err := l.readLocked()
	span.SetAttributes(attribute.Int("ledger.rows", len(recs)))
	return recs, err
}

// Append adds rec to the end of the ledger and returns the new row count.
func (l *Ledger) Append(ctx context.Context, rec domain.OrderRecord) (int, error) {
	_, span := otel.Tracer("repo/Ledger").Start(ctx, "Append")
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	recs, err := l.readLocked()
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	recs = append(recs, rec)
	if err := l.writeLocked(recs); err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("ledger.rows", len(recs)))
	return len(recs), nil
}

// Export writes the ledger as CSV (header plus rows) to w. A missing ledger
// exports as the header alone.
func (l *Ledger) Export(ctx context.Context, w io.Writer) error {
	recs, err := l.ReadAll(ctx)
	if err != nil {
		return err
	}
	return encodeLedger(w, recs)
}

func (l *Ledger) readLocked() ([]domain.OrderRecord, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: l.path, Err: err}
	}
	defer f.Close()

	recs, err := decodeLedger(f)
	if err != nil {
		return nil, &PersistenceError{Op: "parse", Path: l.path, Err: err}
	}
	return recs, nil
}

func (l *Ledger) writeLocked(recs []domain.OrderRecord) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "write", Path: l.path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: l.path, Err: err}
	}

	if err := encodeLedger(tmp, recs); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: l.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: l.path, Err: err}
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: l.path, Err: err}
	}
	return nil
}

// decodeLedger maps columns by header name so files with reordered or extra
// columns still load. Unknown columns are ignored; missing ones stay empty.
func decodeLedger(r io.Reader) ([]domain.OrderRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := col["Item"]; !ok {
		return nil, fmt.Errorf("header %q lacks Item column", strings.Join(header, ","))
	}

	var out []domain.OrderRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}
		var price float64
		if s := strings.TrimSpace(get("Price")); s != "" {
			price, err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: price %q: %w", line, s, err)
			}
		}
		out = append(out, domain.OrderRecord{
			Name:         get("Name"),
			Phone:        get("Phone"),
			Category:     get("Category"),
			Item:         get("Item"),
			Price:        price,
			Occasion:     get("Occasion"),
			DeliveryDate: get("Delivery Date"),
			Notes:        get("Notes"),
			Timestamp:    get("Timestamp"),
		})
	}
}

func encodeLedger(w io.Writer, recs []domain.OrderRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.LedgerHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			r.Name,
			r.Phone,
			r.Category,
			r.Item,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			r.Occasion,
			r.DeliveryDate,
			r.Notes,
			r.Timestamp,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
