// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package page

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

// fakeRuntime implements container.Runtime for renderer tests.
type fakeRuntime struct {
	imageErr error
	dom      string
	runErr   error
	gotArgs  []string
}

func (f *fakeRuntime) Name() string             { return "docker" }
func (f *fakeRuntime) Available() bool          { return true }
func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }

func (f *fakeRuntime) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotArgs = args
	if f.runErr != nil {
		return f.runErr
	}
	_, err := stdout.Write([]byte(f.dom))
	return err
}

func TestChromiumRendererMissingImage(t *testing.T) {
	rt := &fakeRuntime{imageErr: errors.New("no such image")}
	if _, err := NewChromiumRenderer(rt, types.FetchConfig{}); err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestChromiumRendererRender(t *testing.T) {
	rt := &fakeRuntime{dom: "<html><head><title>Rendered</title></head></html>"}
	r, err := NewChromiumRenderer(rt, types.FetchConfig{})
	if err != nil {
		t.Fatal(err)
	}

	p, err := r.Render(context.Background(), "https://example.com")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(p.HTML, "Rendered") {
		t.Errorf("HTML = %q", p.HTML)
	}
	if p.FinalURL != "https://example.com" {
		t.Errorf("FinalURL = %q", p.FinalURL)
	}
	if got := strings.Join(rt.gotArgs, " "); !strings.Contains(got, "--dump-dom https://example.com") {
		t.Errorf("container args = %q", got)
	}
}

func TestChromiumRendererEmptyDOM(t *testing.T) {
	rt := &fakeRuntime{dom: ""}
	r, err := NewChromiumRenderer(rt, types.FetchConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for empty DOM")
	}
}

func TestChromiumRendererCancelledContext(t *testing.T) {
	rt := &fakeRuntime{dom: "<html></html>"}
	r, err := NewChromiumRenderer(rt, types.FetchConfig{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, "https://example.com"); err == nil {
		t.Fatal("expected context error")
	}
}
