package render

// #include "vkrt.h"
import "C"

import "log"

// retireLag is how many configure/collect cycles a retired chain lingers
// before destruction, long enough for in-flight frames to drain under
// double buffering.
const retireLag = 2

type chain struct {
	h      C.VkSwapchainKHR
	key    int
	images []Image

	// acquireSems[i] holds the semaphore most recently used to acquire
	// image i; releaseSems[i] is signaled by rendering and waited on by
	// present.
	acquireSems []Semaphore
	releaseSems []Semaphore
}

type retiredChain struct {
	c     *chain
	frame uint64
}

// Swapchain manages the presentable images of one surface. Configure may
// be called repeatedly; replaced chains are kept until in-flight frames
// drain and then destroyed.
type Swapchain struct {
	surface Surface
	inner   *chain
	retired []retiredChain
	spare   Semaphore
	format  Format
	extent  Extent2D
	frame   uint64
}

// SwapchainImage is one acquired image, valid until presented.
type SwapchainImage struct {
	chain  *chain
	index  uint32
	image  Image
	wait   Semaphore
	signal Semaphore
}

// Image returns the underlying image.
func (si *SwapchainImage) Image() Image { return si.image }

// Wait returns the semaphore rendering must wait on before writing the
// image.
func (si *SwapchainImage) Wait() Semaphore { return si.wait }

// Signal returns the semaphore rendering must signal when done; present
// waits on it.
func (si *SwapchainImage) Signal() Semaphore { return si.signal }

// NewSwapchain wraps a surface. No chain exists until Configure.
func NewSwapchain(surface Surface) *Swapchain {
	return &Swapchain{surface: surface}
}

// Format returns the image format of the current chain.
func (s *Swapchain) Format() Format { return s.format }

// Extent returns the image extent of the current chain.
func (s *Swapchain) Extent() Extent2D { return s.extent }

// ImageCount returns the number of images in the current chain.
func (s *Swapchain) ImageCount() int {
	if s.inner == nil {
		return 0
	}
	return len(s.inner.images)
}

// Configure creates a chain matching the surface's current size,
// retiring any previous chain. A zero-sized surface (minimized window)
// leaves the swapchain without a chain; AcquireImage then reports no
// image.
func (s *Swapchain) Configure(dev *Device) error {
	caps, err := dev.phys.SurfaceCaps(s.surface)
	if err != nil {
		return err
	}

	old := s.inner
	s.inner = nil
	if old != nil {
		s.retired = append(s.retired, retiredChain{c: old, frame: s.frame})
	}

	if caps.CurrentExtent.Width == 0 || caps.CurrentExtent.Height == 0 {
		s.extent = Extent2D{}
		return nil
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	info := dev.phys.info
	usage := ImageUsageColor | ImageUsageTransferDst
	cinfo := C.VkSwapchainCreateInfoKHR{
		sType:           C.VK_STRUCTURE_TYPE_SWAPCHAIN_CREATE_INFO_KHR,
		surface:         s.surface.h,
		minImageCount:   C.uint32_t(imageCount),
		imageFormat:     C.VkFormat(info.SurfaceFormat),
		imageColorSpace: C.VkColorSpaceKHR(info.SurfaceColorSpace),
		imageExtent: C.VkExtent2D{
			width:  C.uint32_t(caps.CurrentExtent.Width),
			height: C.uint32_t(caps.CurrentExtent.Height),
		},
		imageArrayLayers: 1,
		imageUsage:       C.VkImageUsageFlags(usage),
		imageSharingMode: C.VK_SHARING_MODE_EXCLUSIVE,
		preTransform:     caps.transform,
		compositeAlpha:   C.VK_COMPOSITE_ALPHA_OPAQUE_BIT_KHR,
		presentMode:      C.VkPresentModeKHR(info.PresentMode),
		clipped:          C.VK_TRUE,
	}
	if old != nil {
		cinfo.oldSwapchain = old.h
	}

	c := &chain{}
	if err := checkResult(C.vkCreateSwapchainKHR(dev.h, &cinfo, nil, &c.h)); err != nil {
		return err
	}
	c.key = dev.swapchains.insert(c.h)

	var n C.uint32_t
	if err := checkResult(C.vkGetSwapchainImagesKHR(dev.h, c.h, &n, nil)); err != nil {
		return err
	}
	hs := make([]C.VkImage, n)
	if err := checkResult(C.vkGetSwapchainImagesKHR(dev.h, c.h, &n, &hs[0])); err != nil {
		return err
	}
	imgInfo := ImageInfo{
		Extent:      caps.CurrentExtent,
		Format:      info.SurfaceFormat,
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     Samples1,
		Usage:       usage,
	}
	for _, h := range hs {
		c.images = append(c.images, Image{inner: &imageInner{info: imgInfo, h: h}})
	}
	for range hs {
		a, err := dev.CreateSemaphore()
		if err != nil {
			return err
		}
		r, err := dev.CreateSemaphore()
		if err != nil {
			return err
		}
		c.acquireSems = append(c.acquireSems, a)
		c.releaseSems = append(c.releaseSems, r)
	}
	if s.spare.h == nil {
		sp, err := dev.CreateSemaphore()
		if err != nil {
			return err
		}
		s.spare = sp
	}

	s.inner = c
	s.format = info.SurfaceFormat
	s.extent = caps.CurrentExtent
	return nil
}

// rotateSpare swaps the spare value into slot and returns the value that
// was spare, now in use. Consecutive rotations over distinct slots never
// hand out the semaphore an outstanding acquire still uses.
func rotateSpare[T any](spare, slot *T) T {
	used := *spare
	*spare = *slot
	*slot = used
	return used
}

// AcquireImage acquires the next presentable image, blocking until one
// is available. It returns (nil, nil) when no chain exists and
// ErrOutOfDate when the chain no longer matches the surface.
func (s *Swapchain) AcquireImage(dev *Device) (*SwapchainImage, error) {
	if s.inner == nil {
		return nil, nil
	}
	s.frame++

	var idx C.uint32_t
	res := C.vkAcquireNextImageKHR(dev.h, s.inner.h, C.UINT64_MAX, s.spare.h, nil, &idx)
	if res == C.VK_ERROR_OUT_OF_DATE_KHR {
		return nil, ErrOutOfDate
	}
	if err := checkResult(res); err != nil {
		return nil, err
	}

	wait := rotateSpare(&s.spare, &s.inner.acquireSems[idx])
	return &SwapchainImage{
		chain:  s.inner,
		index:  uint32(idx),
		image:  s.inner.images[idx],
		wait:   wait,
		signal: s.inner.releaseSems[idx],
	}, nil
}

// CollectRetired destroys retired chains old enough that no in-flight
// frame can still reference them. Call once per frame.
func (s *Swapchain) CollectRetired(dev *Device) {
	kept := s.retired[:0]
	for _, r := range s.retired {
		if s.frame-r.frame > retireLag {
			destroyChain(dev, r.c)
		} else {
			kept = append(kept, r)
		}
	}
	s.retired = kept
}

func destroyChain(dev *Device, c *chain) {
	for _, sem := range c.acquireSems {
		dev.DestroySemaphore(sem)
	}
	for _, sem := range c.releaseSems {
		dev.DestroySemaphore(sem)
	}
	dev.swapchains.take(c.key)
	C.vkDestroySwapchainKHR(dev.h, c.h, nil)
	c.h = nil
}

// Destroy waits for the device to idle and destroys the current and all
// retired chains. The surface itself belongs to the instance.
func (s *Swapchain) Destroy(dev *Device) {
	if err := dev.WaitIdle(); err != nil {
		log.Printf("[!] render: wait before swapchain destroy: %v", err)
	}
	for _, r := range s.retired {
		destroyChain(dev, r.c)
	}
	s.retired = nil
	if s.inner != nil {
		destroyChain(dev, s.inner)
		s.inner = nil
	}
	if s.spare.h != nil {
		dev.DestroySemaphore(s.spare)
		s.spare = Semaphore{}
	}
}
