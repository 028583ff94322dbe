// Package meta loads and stores text resources (configuration files, command
// scripts, snapshots) through afs so that local paths and any afs supported
// storage URL are handled the same way.
package meta

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// Service resolves resources relative to an optional base URL
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// URL resolves location against the base URL
func (s *Service) URL(location string) string {
	if s.baseURL == "" || !url.IsRelative(location) {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Exists reports whether the resource is present
func (s *Service) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, s.URL(location), s.options...)
}

// Download returns the raw resource content
func (s *Service) Download(ctx context.Context, location string) ([]byte, error) {
	URL := s.URL(location)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	return data, nil
}

// Load returns the resource content with ${env.KEY} expressions expanded. The
// boolean result is false when the resource does not exist.
func (s *Service) Load(ctx context.Context, location string) ([]byte, bool, error) {
	exists, err := s.Exists(ctx, location)
	if err != nil || !exists {
		return nil, false, err
	}
	data, err := s.Download(ctx, location)
	if err != nil {
		return nil, true, err
	}
	return []byte(ExpandEnv(string(data))), true, nil
}

// Upload stores data under location
func (s *Service) Upload(ctx context.Context, location string, data []byte) error {
	URL := s.URL(location)
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data), s.options...); err != nil {
		return fmt.Errorf("failed to upload %v: %w", URL, err)
	}
	return nil
}

// New creates a meta service
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
