/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxCatalogSize bounds how much of a catalog source is read.
const maxCatalogSize = 16 << 20

// ParseCatalog decodes a JSON array of items.
func ParseCatalog(r io.Reader) (Catalog, error) {
	var c Catalog

	dec := json.NewDecoder(io.LimitReader(r, maxCatalogSize))
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return c, nil
}

// LoadCatalog reads a catalog from a local path or an http(s) URL.
func LoadCatalog(ctx context.Context, client *http.Client, src string) (Catalog, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetchCatalog(ctx, client, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return ParseCatalog(f)
}

func fetchCatalog(ctx context.Context, client *http.Client, url string) (Catalog, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
	}

	return ParseCatalog(resp.Body)
}
