package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// bucketStore keeps uploaded images on disk under root/<group>/. Writes are
// not locked; concurrent uploads of one name are last-writer-wins.
type bucketStore struct {
	root string
}

func newBucketStore(root string) *bucketStore {
	return &bucketStore{root: root}
}

func (b *bucketStore) groupDir(group string) string {
	return filepath.Join(b.root, group)
}

// EnsureGroups creates the upload root and every group directory.
func (b *bucketStore) EnsureGroups() error {
	for _, group := range validGroups {
		if err := os.MkdirAll(b.groupDir(group), 0o755); err != nil {
			return fmt.Errorf("create group dir %s: %w", group, err)
		}
	}
	return nil
}

// Store validates group and extension before touching the filesystem and
// returns the sanitized name the file was written under.
func (b *bucketStore) Store(group, filename string, data []byte) (string, error) {
	if !isValidGroup(group) {
		return "", fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	if strings.TrimSpace(filename) == "" {
		return "", ErrMissingFile
	}
	ext := fileExt(filename)
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, filename)
	}

	name := secureFilename(filename)
	if !isAllowedImage(name) || strings.TrimSuffix(name, "."+fileExt(name)) == "" {
		name = fmt.Sprintf("upload-%s.%s", uuid.NewString()[:8], ext)
	}

	dir := b.groupDir(group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create group dir %s: %w", group, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s/%s: %w", group, name, err)
	}
	return name, nil
}

// List returns the allowed image files of group in lexicographic order. A
// missing directory is an empty group.
func (b *bucketStore) List(group string) ([]string, error) {
	if !isValidGroup(group) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	entries, err := os.ReadDir(b.groupDir(group))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list group %s: %w", group, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isAllowedImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Clear removes the regular files directly inside the group directory and
// keeps the directory itself.
func (b *bucketStore) Clear(group string) (int, error) {
	if !isValidGroup(group) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	dir := b.groupDir(group)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read group %s: %w", group, err)
	}
	removed := 0
	var firstErr error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s/%s: %w", group, entry.Name(), err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

func (b *bucketStore) Read(group, filename string) ([]byte, error) {
	if !isValidGroup(group) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	full, err := resolvePathUnderRoot(b.groupDir(group), filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, group, filename)
	}
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, group, filename)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", group, filename, err)
	}
	return data, nil
}

// Load reads every listed image of group with its extension-derived media type.
func (b *bucketStore) Load(group string) ([]groupImage, error) {
	names, err := b.List(group)
	if err != nil {
		return nil, err
	}
	images := make([]groupImage, 0, len(names))
	for _, name := range names {
		data, err := b.Read(group, name)
		if err != nil {
			return nil, err
		}
		images = append(images, groupImage{Name: name, MediaType: mediaTypeFor(name), Data: data})
	}
	return images, nil
}
