// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package page

import (
	"context"
	"fmt"

	"github.com/pdiddy/semantic-browser/internal/container"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

// Browser fetches a page and extracts its semantic snapshot in one step.
// The fetch backend is plain HTTP unless the config selects the chromium
// renderer.
type Browser struct {
	fetcher  *Fetcher
	renderer Renderer
}

// NewBrowser builds a Browser from config. When cfg.Renderer is "chromium"
// it detects a container runtime and renders through headless Chromium;
// anything else uses plain HTTP.
func NewBrowser(cfg types.FetchConfig) (*Browser, error) {
	b := &Browser{fetcher: NewFetcher(cfg)}

	if cfg.Renderer == "chromium" {
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, fmt.Errorf("chromium renderer requested: %w", err)
		}
		renderer, err := NewChromiumRenderer(rt, cfg)
		if err != nil {
			return nil, err
		}
		b.renderer = renderer
	}

	return b, nil
}

// Browse fetches url, extracts its snapshot, and applies the optional
// query to produce scored text matches.
func (b *Browser) Browse(ctx context.Context, url, query string) (*types.BrowseOutcome, error) {
	var (
		p   *types.Page
		err error
	)
	if b.renderer != nil {
		p, err = b.renderer.Render(ctx, url)
	} else {
		p, err = b.fetcher.Fetch(ctx, url)
	}
	if err != nil {
		return nil, err
	}

	snap, err := Extract(p.HTML, p.FinalURL, query)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", url, err)
	}

	return &types.BrowseOutcome{Page: *p, Snapshot: *snap}, nil
}
