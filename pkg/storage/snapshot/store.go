// Package snapshot persists whole-table images. Each table is one file,
// <dir>/<name>.dbf, holding msgpack-encoded metadata and the image. Files are
// replaced atomically, so a reader sees either the old or the new snapshot.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tinylib/msgp/msgp"

	"relstore/pkg/dberror"
	"relstore/pkg/logging"
)

// Ext is the file extension of table snapshots.
const Ext = ".dbf"

const formatVersion = 1

// Meta describes one saved snapshot.
type Meta struct {
	ID      uuid.UUID
	Table   string
	Rows    int
	SavedAt time.Time
}

// MarshalMsg implements msgp.Marshaler
func (m *Meta) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.AppendMapHeader(b, 4)
	o = msgp.AppendString(o, "id")
	o = msgp.AppendString(o, m.ID.String())
	o = msgp.AppendString(o, "table")
	o = msgp.AppendString(o, m.Table)
	o = msgp.AppendString(o, "rows")
	o = msgp.AppendInt(o, m.Rows)
	o = msgp.AppendString(o, "saved_at")
	o = msgp.AppendTime(o, m.SavedAt)
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *Meta) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, err
	}

	for range sz {
		var field string
		field, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, err
		}

		switch field {
		case "id":
			var s string
			if s, bts, err = msgp.ReadStringBytes(bts); err == nil {
				m.ID, err = uuid.Parse(s)
			}
		case "table":
			m.Table, bts, err = msgp.ReadStringBytes(bts)
		case "rows":
			m.Rows, bts, err = msgp.ReadIntBytes(bts)
		case "saved_at":
			m.SavedAt, bts, err = msgp.ReadTimeBytes(bts)
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return bts, msgp.WrapError(err, field)
		}
	}
	return bts, nil
}

// Store reads and writes table snapshots in one directory.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore opens dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSnapshot, "Open", "SnapshotStore")
	}
	return &Store{dir: dir, log: logging.WithComponent("snapshot")}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a table snapshot is stored in.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+Ext)
}

func checkName(op, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		e := dberror.New(dberror.ErrCategoryUser, dberror.CodeSnapshot, "invalid snapshot name")
		e.Detail = name
		return e.WithOp(op, "SnapshotStore")
	}
	return nil
}

// Save writes img to <dir>/<img.Name>.dbf, replacing any previous snapshot.
// The file is written to a temporary name and renamed into place.
func (s *Store) Save(img *Image) (Meta, error) {
	if err := checkName("Save", img.Name); err != nil {
		return Meta{}, err
	}
	if err := img.Validate(); err != nil {
		return Meta{}, dberror.Wrap(err, dberror.CodeSnapshot, "Save", "SnapshotStore")
	}

	meta := Meta{
		ID:      uuid.New(),
		Table:   img.Name,
		Rows:    len(img.Rows),
		SavedAt: time.Now().UTC(),
	}

	data, err := encode(&meta, img)
	if err != nil {
		return Meta{}, dberror.Wrap(err, dberror.CodeSnapshot, "Save", "SnapshotStore")
	}
	if err := writeAtomic(s.dir, s.Path(img.Name), data); err != nil {
		return Meta{}, dberror.Wrap(err, dberror.CodeSnapshot, "Save", "SnapshotStore")
	}

	s.log.Debug("snapshot saved", "table", img.Name, "id", meta.ID.String(), "rows", meta.Rows, "bytes", len(data))
	return meta, nil
}

// Load reads the snapshot of the named table. A file whose image names a
// different table is reported as corrupted.
func (s *Store) Load(name string) (*Image, Meta, error) {
	if err := checkName("Load", name); err != nil {
		return nil, Meta{}, err
	}

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, Meta{}, dberror.Wrap(err, dberror.CodeSnapshot, "Load", "SnapshotStore")
	}

	img, meta, err := decode(data)
	if err == nil && img.Name != name {
		err = fmt.Errorf("file holds table %q", img.Name)
	}
	if err != nil {
		e := dberror.Wrap(err, dberror.CodeSnapshotCorrupted, "Load", "SnapshotStore")
		e.Category = dberror.ErrCategoryData
		e.Detail = s.Path(name)
		return nil, Meta{}, e
	}

	s.log.Debug("snapshot loaded", "table", name, "id", meta.ID.String(), "rows", meta.Rows)
	return img, meta, nil
}

// List returns the names of all saved tables in lexical order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSnapshot, "List", "SnapshotStore")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Ext))
	}
	slices.Sort(names)
	return names, nil
}

// Remove deletes the snapshot of the named table. Removing a missing
// snapshot is not an error.
func (s *Store) Remove(name string) error {
	if err := checkName("Remove", name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return dberror.Wrap(err, dberror.CodeSnapshot, "Remove", "SnapshotStore")
	}
	return nil
}

func encode(meta *Meta, img *Image) ([]byte, error) {
	o := msgp.AppendMapHeader(nil, 3)
	o = msgp.AppendString(o, "version")
	o = msgp.AppendInt(o, formatVersion)

	var err error
	o = msgp.AppendString(o, "meta")
	if o, err = meta.MarshalMsg(o); err != nil {
		return nil, err
	}
	o = msgp.AppendString(o, "image")
	if o, err = img.MarshalMsg(o); err != nil {
		return nil, err
	}
	return o, nil
}

func decode(bts []byte) (*Image, Meta, error) {
	var (
		meta    Meta
		img     Image
		version int
		hasImg  bool
	)

	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return nil, Meta{}, err
	}
	for range sz {
		var field string
		field, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return nil, Meta{}, err
		}
		switch field {
		case "version":
			version, bts, err = msgp.ReadIntBytes(bts)
		case "meta":
			bts, err = meta.UnmarshalMsg(bts)
		case "image":
			bts, err = img.UnmarshalMsg(bts)
			hasImg = true
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return nil, Meta{}, msgp.WrapError(err, field)
		}
	}

	if version != formatVersion {
		return nil, Meta{}, errors.New("unsupported snapshot version")
	}
	if !hasImg {
		return nil, Meta{}, errors.New("snapshot has no image")
	}
	if err := img.Validate(); err != nil {
		return nil, Meta{}, err
	}
	return &img, meta, nil
}

// writeAtomic writes data to a temporary file in dir, syncs it and renames it
// to path.
func writeAtomic(dir, path string, data []byte) error {
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
