// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

package queue

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FSStore is a BlobStore over a directory tree. Namespaces are
// subdirectories of the root; refs are small files whose content is the
// name of the blob they point at.
type FSStore struct {
	root   string
	logger *zap.Logger
}

// NewFSStore creates a store rooted at dir. The directory is created if
// it does not exist. A nil logger is replaced with a no-op one.
func NewFSStore(dir string, logger *zap.Logger) (*FSStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &FSStore{root: dir, logger: logger}, nil
}

// abs maps a store name onto a path under the root, rejecting names
// that would escape it.
func (s *FSStore) abs(name string) (string, error) {
	cleaned := path.Clean("/" + name)
	if cleaned == "/" {
		return "", fmt.Errorf("empty store name %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned[1:])), nil
}

func (s *FSStore) Put(name string, data []byte) error {
	p, err := s.abs(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create namespace for %s: %w", name, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *FSStore) Get(name string) ([]byte, error) {
	p, err := s.abs(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *FSStore) List(namespace string) ([]string, error) {
	p, err := s.abs(namespace)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", namespace, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *FSStore) Delete(name string) error {
	p, err := s.abs(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// LinkInto writes a ref file named after the source's base name. The
// ref's content is the source name itself; ResolveRef follows it. An
// existing ref is left untouched so enqueueing is idempotent.
func (s *FSStore) LinkInto(namespace, sourceName string) (Ref, error) {
	if _, err := s.Get(sourceName); err != nil {
		return "", fmt.Errorf("link source missing: %w", err)
	}

	refName := namespace + "/" + path.Base(sourceName)
	p, err := s.abs(refName)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err == nil {
		s.logger.Debug("ref already present, not relinking", zap.String("ref", refName))
		return Ref(refName), nil
	}

	if err := s.Put(refName, []byte(sourceName)); err != nil {
		return "", err
	}
	return Ref(refName), nil
}

// ResolveRef loads the ref file and then the blob it names.
func (s *FSStore) ResolveRef(ref Ref) ([]byte, error) {
	target, err := s.Get(string(ref))
	if err != nil {
		return nil, fmt.Errorf("broken ref %s: %w", ref, err)
	}
	return s.Get(strings.TrimSpace(string(target)))
}
