/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	_ "embed"
	"net/http"
	"sync"

	"github.com/Seednode/impostor/games/impostor"
)

const (
	catalogLoading     = "loading"
	catalogReady       = "ready"
	catalogUnavailable = "unavailable"
)

//go:embed impostor/items.json
var sampleItems []byte

// catalogStore holds the item catalog. It stays empty until the one-time
// background load finishes, and stays empty if that load fails.
type catalogStore struct {
	mu     sync.RWMutex
	items  impostor.Catalog
	loaded chan struct{}
}

func newCatalogStore() *catalogStore {
	return &catalogStore{
		loaded: make(chan struct{}),
	}
}

func (c *catalogStore) Items() impostor.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.items
}

// Loaded is closed once the load attempt has finished, successfully or not.
func (c *catalogStore) Loaded() <-chan struct{} {
	return c.loaded
}

// Status reports whether the catalog is still loading, ready to play, or
// finished loading without any playable item.
func (c *catalogStore) Status() string {
	select {
	case <-c.loaded:
	default:
		return catalogLoading
	}

	if len(c.Items().Playable()) == 0 {
		return catalogUnavailable
	}

	return catalogReady
}

func (c *catalogStore) set(items impostor.Catalog) {
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// load fetches the configured catalog once. There is no retry.
func (c *catalogStore) load(ctx context.Context, cfg *Config) {
	defer close(c.loaded)

	var (
		items impostor.Catalog
		err   error
	)

	source := cfg.catalog
	if source == "" {
		source = "built-in sample"
		items, err = impostor.ParseCatalog(bytes.NewReader(sampleItems))
	} else {
		ctx, cancel := context.WithTimeout(ctx, cfg.catalogTimeout)
		defer cancel()

		items, err = impostor.LoadCatalog(ctx, &http.Client{Timeout: cfg.catalogTimeout}, source)
	}
	if err != nil {
		errorf("Unable to load catalog from %s: %v", source, err)

		return
	}

	playable := len(items.Playable())
	if skipped := len(items) - playable; skipped > 0 {
		logf(cfg, "CATALOG: Skipping %d malformed item(s) from %s", skipped, source)
	}
	if playable == 0 {
		errorf("Catalog from %s has no playable items", source)
	}

	c.set(items)

	logf(cfg, "CATALOG: Loaded %d item(s) from %s", playable, source)
}
