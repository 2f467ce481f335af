// Package jsonfile keeps products and sales as two JSON documents in a data
// directory. Each document is a top-level array rewritten in full on save.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sirupsen/logrus"
)

const (
	ProductsFile = "products.json"
	SalesFile    = "sales.json"
)

// Store implements repository.Storage on the local filesystem
type Store struct {
	dir string
	mu  sync.Mutex
	log logrus.FieldLogger
}

// Open prepares dir for use, creating it and any missing document as an
// empty array.
func Open(dir string, log logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data directory %s", dir)
	}

	s := &Store{dir: dir, log: log.WithField("component", "jsonfile")}
	for _, name := range []string{ProductsFile, SalesFile} {
		path := s.path(name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", path)
		}
		if err := writeFile(path, []byte("[]\n")); err != nil {
			return nil, err
		}
		s.log.WithField("file", path).Info("created empty data file")
	}
	return s, nil
}

// Dir returns the data directory
func (s *Store) Dir() string { return s.dir }

func (s *Store) LoadProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := s.load(ctx, ProductsFile, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

func (s *Store) SaveProducts(ctx context.Context, products []entity.Product) error {
	if products == nil {
		products = []entity.Product{}
	}
	return s.save(ctx, ProductsFile, products)
}

func (s *Store) LoadSales(ctx context.Context) ([]entity.Sale, error) {
	var sales []entity.Sale
	if err := s.load(ctx, SalesFile, &sales); err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []entity.Sale{}
	}
	return sales, nil
}

func (s *Store) SaveSales(ctx context.Context, sales []entity.Sale) error {
	if sales == nil {
		sales = []entity.Sale{}
	}
	return s.save(ctx, SalesFile, sales)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// load decodes name into out. A missing, empty or blank file leaves out
// untouched.
func (s *Store) load(ctx context.Context, name string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (s *Store) save(ctx context.Context, name string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(s.path(name), data)
}

// writeFile replaces path atomically with a temp file and rename
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "sync %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
