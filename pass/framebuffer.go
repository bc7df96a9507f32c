package pass

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/GoncaloFDS/tracer/render"
)

// retireLag is how many frames evicted device objects outlive their
// eviction, covering submissions still in flight.
const retireLag = frameSlots

// graveyard delays destruction of evicted objects until in-flight
// frames can no longer reference them.
type graveyard[T any] struct {
	items []graveItem[T]
}

type graveItem[T any] struct {
	v     T
	frame uint64
}

func (g *graveyard[T]) add(v T, frame uint64) {
	g.items = append(g.items, graveItem[T]{v: v, frame: frame})
}

// collect destroys items buried more than lag frames ago.
func (g *graveyard[T]) collect(frame, lag uint64, destroy func(T)) {
	kept := g.items[:0]
	for _, it := range g.items {
		if frame-it.frame > lag {
			destroy(it.v)
		} else {
			kept = append(kept, it)
		}
	}
	g.items = kept
}

// drain destroys everything regardless of age.
func (g *graveyard[T]) drain(destroy func(T)) {
	for _, it := range g.items {
		destroy(it.v)
	}
	g.items = nil
}

type fbEntry struct {
	view render.ImageView
	fb   render.Framebuffer
}

// framebufferCacheCap bounds cached framebuffers; render targets rotate
// across a handful of swapchain images.
const framebufferCacheCap = 4

// FramebufferCache caches one framebuffer per target image. Eviction
// goes through a graveyard instead of destroying immediately, since the
// evicted framebuffer may back an unfinished submission.
type FramebufferCache struct {
	pass     render.RenderPass
	depth    render.ImageView
	hasDepth bool

	cache *lru.Cache[render.Image, fbEntry]
	grave graveyard[fbEntry]
	frame uint64
}

// NewFramebufferCache builds a cache for the render pass. depth, when
// non-nil, is appended to every framebuffer as the second attachment.
func NewFramebufferCache(pass render.RenderPass, depth *render.ImageView) (*FramebufferCache, error) {
	c := &FramebufferCache{pass: pass}
	if depth != nil {
		c.depth = *depth
		c.hasDepth = true
	}
	l, err := lru.NewWithEvict[render.Image, fbEntry](framebufferCacheCap, func(_ render.Image, e fbEntry) {
		c.grave.add(e, c.frame)
	})
	if err != nil {
		return nil, err
	}
	c.cache = l
	return c, nil
}

// Get returns the framebuffer for target, creating and caching it on the
// first use.
func (c *FramebufferCache) Get(dev *render.Device, target render.Image, frame uint64) (render.Framebuffer, error) {
	c.frame = frame
	if e, ok := c.cache.Get(target); ok {
		return e.fb, nil
	}
	view, err := dev.CreateImageView(render.NewImageViewInfo(target, render.AspectColor))
	if err != nil {
		return render.Framebuffer{}, err
	}
	atts := []render.ImageView{view}
	if c.hasDepth {
		atts = append(atts, c.depth)
	}
	fb, err := dev.CreateFramebuffer(render.FramebufferInfo{
		RenderPass:  c.pass,
		Attachments: atts,
		Extent:      target.Info().Extent,
	})
	if err != nil {
		dev.DestroyImageView(view)
		return render.Framebuffer{}, err
	}
	c.cache.Add(target, fbEntry{view: view, fb: fb})
	return fb, nil
}

// Collect destroys graveyard entries that are provably drained. Call
// once per frame.
func (c *FramebufferCache) Collect(dev *render.Device, frame uint64) {
	c.frame = frame
	c.grave.collect(frame, retireLag, func(e fbEntry) { destroyEntry(dev, e) })
}

// Purge evicts every cached framebuffer into the graveyard. Call when
// the target images are replaced (swapchain reconfigure).
func (c *FramebufferCache) Purge() {
	c.cache.Purge()
}

// Destroy drops everything immediately. The caller must have idled the
// device.
func (c *FramebufferCache) Destroy(dev *render.Device) {
	c.cache.Purge()
	c.grave.drain(func(e fbEntry) { destroyEntry(dev, e) })
}

func destroyEntry(dev *render.Device, e fbEntry) {
	dev.DestroyFramebuffer(e.fb)
	dev.DestroyImageView(e.view)
}
