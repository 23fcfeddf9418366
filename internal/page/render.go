// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package page

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/semantic-browser/internal/container"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

const imageChromium = "chromium-headless:latest"

// Renderer produces the rendered DOM for a URL. It exists so pages that
// need JavaScript execution can go through a headless browser while the
// rest of the pipeline stays transport-agnostic.
type Renderer interface {
	Render(ctx context.Context, url string) (*types.Page, error)
}

// ChromiumRenderer renders pages by running a headless Chromium container
// and capturing its DOM dump. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type ChromiumRenderer struct {
	runtime      container.Runtime
	maxBodyBytes int64
}

// NewChromiumRenderer creates a renderer that uses the given container
// runtime. It verifies that the Chromium image exists locally before
// returning.
func NewChromiumRenderer(rt container.Runtime, cfg types.FetchConfig) (*ChromiumRenderer, error) {
	if err := rt.ImageExists(imageChromium); err != nil {
		return nil, fmt.Errorf("chromium image not available in %s: %w", rt.Name(), err)
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	return &ChromiumRenderer{runtime: rt, maxBodyBytes: maxBytes}, nil
}

// Render runs the Chromium container against url and returns the dumped DOM
// as a Page. Redirects are resolved inside the browser, so FinalURL equals
// the requested URL here.
func (r *ChromiumRenderer) Render(ctx context.Context, url string) (*types.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := []string{"--headless", "--disable-gpu", "--dump-dom", url}

	start := time.Now()
	var out bytes.Buffer
	if err := r.runtime.Run(imageChromium, args, nil, &out); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}
	elapsed := time.Since(start)

	if out.Len() == 0 {
		return nil, fmt.Errorf("chromium produced empty DOM for %s", url)
	}

	html := out.String()
	if err := ValidateHTML(html, r.maxBodyBytes); err != nil {
		return nil, fmt.Errorf("page %s: %w", url, err)
	}

	return &types.Page{
		URL:           url,
		FinalURL:      url,
		StatusCode:    200,
		HTML:          html,
		ContentLength: out.Len(),
		FetchTime:     elapsed,
		FetchedAt:     start.Add(elapsed),
	}, nil
}
