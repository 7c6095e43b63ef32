// Package panel owns the UI-facing state of the browser control surface:
// open/closed, zoom level, and the coordinate-picker mode that maps clicks
// on the rendered preview back to page coordinates.
package panel

import (
	"context"
	"fmt"
	"sync"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// Executor dispatches the gestures the panel produces. Satisfied by
// *gateway.Gateway.
type Executor interface {
	ExecuteAction(ctx context.Context, kind automation.ActionKind, params automation.Params) (*automation.Result, error)
}

// Zoom bounds, in percent of the base viewport.
const (
	ZoomMin  = 25
	ZoomMax  = 200
	ZoomStep = 25
)

// Panel tracks control-surface state and routes gestures to the gateway.
type Panel struct {
	exec Executor

	mu      sync.Mutex
	open    bool
	zoom    int
	picker  bool
	preview automation.Viewport // rendered preview image size
	base    automation.Viewport // viewport at 100% zoom
	page    automation.Viewport // viewport last applied to the live page
}

// New creates a closed panel at 100% zoom over the default viewport.
func New(exec Executor) *Panel {
	base := automation.Viewport{
		Width:  automation.DefaultViewportWidth,
		Height: automation.DefaultViewportHeight,
	}
	return &Panel{
		exec: exec,
		zoom: 100,
		base: base,
		page: base,
	}
}

// Open opens the control surface.
func (p *Panel) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
}

// Close closes the control surface and leaves picker mode.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.picker = false
}

// IsOpen reports whether the control surface is showing.
func (p *Panel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Zoom returns the current zoom percentage.
func (p *Panel) Zoom() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.zoom
}

// ZoomIn raises the zoom one step, saturating at the maximum.
func (p *Panel) ZoomIn() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.zoom += ZoomStep
	if p.zoom > ZoomMax {
		p.zoom = ZoomMax
	}
	return p.zoom
}

// ZoomOut lowers the zoom one step, saturating at the minimum.
func (p *Panel) ZoomOut() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.zoom -= ZoomStep
	if p.zoom < ZoomMin {
		p.zoom = ZoomMin
	}
	return p.zoom
}

// ResetZoom restores 100%.
func (p *Panel) ResetZoom() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zoom = 100
	return p.zoom
}

// EffectiveViewport returns the viewport implied by the current zoom:
// the base dimensions divided by zoom/100, so zooming in shrinks the
// visible page area.
func (p *Panel) EffectiveViewport() automation.Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.effectiveViewportLocked()
}

func (p *Panel) effectiveViewportLocked() automation.Viewport {
	return automation.Viewport{
		Width:  p.base.Width * 100 / p.zoom,
		Height: p.base.Height * 100 / p.zoom,
	}
}

// ApplyZoom pushes the current zoom to the page as a viewport resize. On
// success the panel records the new page viewport so the coordinate picker
// maps against the size the page actually has.
func (p *Panel) ApplyZoom(ctx context.Context) (*automation.Result, error) {
	p.mu.Lock()
	effective := p.effectiveViewportLocked()
	scale := float64(p.zoom) / 100.0
	p.mu.Unlock()

	result, err := p.exec.ExecuteAction(ctx, automation.ActionSetViewport, automation.Params{
		"width":             float64(effective.Width),
		"height":            float64(effective.Height),
		"deviceScaleFactor": scale,
	})
	if err == nil && result.Success {
		p.mu.Lock()
		p.page = effective
		p.mu.Unlock()
	}
	return result, err
}

// SetPreviewSize records the rendered size of the preview image, which the
// coordinate picker scales against.
func (p *Panel) SetPreviewSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preview = automation.Viewport{Width: width, Height: height}
}

// TogglePicker flips coordinate-picker mode and returns the new state.
func (p *Panel) TogglePicker() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.picker = !p.picker
	return p.picker
}

// PickerActive reports whether the next preview click is interpreted as a
// page click.
func (p *Panel) PickerActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.picker
}

// MapPreviewClick converts preview-image coordinates to page coordinates by
// linear scaling against the page's current viewport. A click at the
// preview's center maps to the viewport's center regardless of the preview
// scale factor or the applied zoom level.
func (p *Panel) MapPreviewClick(px, py float64) (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.preview.Width <= 0 || p.preview.Height <= 0 {
		return 0, 0, fmt.Errorf("preview size not set")
	}

	x := px * float64(p.page.Width) / float64(p.preview.Width)
	y := py * float64(p.page.Height) / float64(p.preview.Height)
	return x, y, nil
}

// PickAt maps a preview click to page coordinates, forwards it as a click
// action, and leaves picker mode.
func (p *Panel) PickAt(ctx context.Context, px, py float64) (*automation.Result, error) {
	x, y, err := p.MapPreviewClick(px, py)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.picker = false
	p.mu.Unlock()

	return p.exec.ExecuteAction(ctx, automation.ActionClick, automation.Params{
		"x": x,
		"y": y,
	})
}
