package web

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/denoland-id/denoid/pkg/observability"
)

// SiteSource provides the site configuration for a render
type SiteSource interface {
	Site() *Site
}

// StaticSite serves a fixed site
type StaticSite struct {
	site *Site
}

// NewStaticSite wraps site, falling back to DefaultSite when nil
func NewStaticSite(site *Site) StaticSite {
	if site == nil {
		site = DefaultSite()
	}
	return StaticSite{site: site}
}

func (s StaticSite) Site() *Site { return s.site }

// SiteStore holds the site loaded from a YAML file and reloads it when the
// file changes. A reload that fails to parse keeps the previous site.
type SiteStore struct {
	path    string
	logger  *observability.Logger
	current atomic.Pointer[Site]
	reloads atomic.Uint64
}

// NewSiteStore loads path and returns a store serving it
func NewSiteStore(path string, logger *observability.Logger) (*SiteStore, error) {
	s := &SiteStore{path: path, logger: logger.WithField("site_config", path)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Site returns the most recently loaded site
func (s *SiteStore) Site() *Site {
	return s.current.Load()
}

// Reloads counts successful loads, including the initial one
func (s *SiteStore) Reloads() uint64 {
	return s.reloads.Load()
}

// Reload re-reads the file and publishes the new site on success
func (s *SiteStore) Reload() error {
	cfg, err := LoadSiteConfig(s.path)
	if err != nil {
		return err
	}
	site, err := NewSite(cfg)
	if err != nil {
		return err
	}
	s.current.Store(site)
	s.reloads.Add(1)
	return nil
}

// Watch reloads the site whenever the file is written, created, or renamed
// into place, until ctx is done. The parent directory is watched so editors
// and config-map updates that replace the file are seen.
func (s *SiteStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.WithError(err).Warn("Site config reload failed, keeping previous config")
				continue
			}
			s.logger.Info("Site config reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.WithError(err).Warn("Site config watcher error")
		}
	}
}
