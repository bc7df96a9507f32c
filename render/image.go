package render

// #include "vkrt.h"
import "C"

// ImageInfo describes an image to create.
type ImageInfo struct {
	Extent      Extent2D
	Format      Format
	MipLevels   uint32
	ArrayLayers uint32
	Samples     SampleCount
	Usage       ImageUsage
}

type imageInner struct {
	info  ImageInfo
	h     C.VkImage
	key   int
	mem   *memory
	owned bool
}

// Image is a handle to a device image. Swapchain images are wrapped the
// same way but stay owned by their swapchain.
type Image struct {
	inner *imageInner
}

// Valid reports whether the image refers to a live native object.
func (im Image) Valid() bool { return im.inner != nil && im.inner.h != nil }

// Info returns the creation parameters.
func (im Image) Info() ImageInfo { return im.inner.info }

// ImageSubresourceRange selects mips and layers of one aspect.
type ImageSubresourceRange struct {
	Aspect         ImageAspect
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

// WholeImage returns a range covering every mip and layer of one aspect.
func WholeImage(im Image, aspect ImageAspect) ImageSubresourceRange {
	info := im.Info()
	return ImageSubresourceRange{
		Aspect:     aspect,
		LevelCount: info.MipLevels,
		LayerCount: info.ArrayLayers,
	}
}

// CreateImage creates a 2D image and binds dedicated device-local memory
// to it.
func (d *Device) CreateImage(info ImageInfo) (Image, error) {
	if info.MipLevels == 0 {
		info.MipLevels = 1
	}
	if info.ArrayLayers == 0 {
		info.ArrayLayers = 1
	}
	if info.Samples == 0 {
		info.Samples = Samples1
	}
	cinfo := C.VkImageCreateInfo{
		sType:     C.VK_STRUCTURE_TYPE_IMAGE_CREATE_INFO,
		imageType: C.VK_IMAGE_TYPE_2D,
		format:    C.VkFormat(info.Format),
		extent: C.VkExtent3D{
			width:  C.uint32_t(info.Extent.Width),
			height: C.uint32_t(info.Extent.Height),
			depth:  1,
		},
		mipLevels:     C.uint32_t(info.MipLevels),
		arrayLayers:   C.uint32_t(info.ArrayLayers),
		samples:       C.VkSampleCountFlagBits(info.Samples),
		tiling:        C.VK_IMAGE_TILING_OPTIMAL,
		usage:         C.VkImageUsageFlags(info.Usage),
		sharingMode:   C.VK_SHARING_MODE_EXCLUSIVE,
		initialLayout: C.VK_IMAGE_LAYOUT_UNDEFINED,
	}
	inner := &imageInner{info: info, owned: true}
	if err := checkResult(C.vkCreateImage(d.h, &cinfo, nil, &inner.h)); err != nil {
		return Image{}, err
	}

	var req C.VkMemoryRequirements
	C.vkGetImageMemoryRequirements(d.h, inner.h, &req)
	mem, err := d.alloc(req, AllocFastDeviceAccess)
	if err != nil {
		C.vkDestroyImage(d.h, inner.h, nil)
		return Image{}, err
	}
	inner.mem = mem

	if err := checkResult(C.vkBindImageMemory(d.h, inner.h, mem.mem, 0)); err != nil {
		d.freeMem(mem)
		C.vkDestroyImage(d.h, inner.h, nil)
		return Image{}, err
	}

	inner.key = d.images.insert(inner.h)
	return Image{inner: inner}, nil
}

// DestroyImage destroys the image and frees its memory early. Swapchain
// images are ignored.
func (d *Device) DestroyImage(im Image) {
	if !im.Valid() || !im.inner.owned {
		return
	}
	d.images.take(im.inner.key)
	C.vkDestroyImage(d.h, im.inner.h, nil)
	d.freeMem(im.inner.mem)
	im.inner.h = nil
}

// ImageViewInfo describes a view to create.
type ImageViewInfo struct {
	Image    Image
	ViewType ImageViewType
	Range    ImageSubresourceRange
}

// NewImageViewInfo returns a 2D view info covering the whole image.
func NewImageViewInfo(im Image, aspect ImageAspect) ImageViewInfo {
	return ImageViewInfo{
		Image:    im,
		ViewType: ViewType2D,
		Range:    WholeImage(im, aspect),
	}
}

type viewInner struct {
	info ImageViewInfo
	h    C.VkImageView
	key  int
}

// ImageView is a handle to an image view.
type ImageView struct {
	inner *viewInner
}

// Info returns the creation parameters.
// Valid reports whether the view refers to a live native object.
func (v ImageView) Valid() bool { return v.inner != nil && v.inner.h != nil }

func (v ImageView) Info() ImageViewInfo { return v.inner.info }

// Image returns the image the view was created from.
func (v ImageView) Image() Image { return v.inner.info.Image }

// CreateImageView creates a view of an image.
func (d *Device) CreateImageView(info ImageViewInfo) (ImageView, error) {
	cinfo := C.VkImageViewCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO,
		image:    info.Image.inner.h,
		viewType: C.VkImageViewType(info.ViewType),
		format:   C.VkFormat(info.Image.Info().Format),
		subresourceRange: C.VkImageSubresourceRange{
			aspectMask:     C.VkImageAspectFlags(info.Range.Aspect),
			baseMipLevel:   C.uint32_t(info.Range.BaseMipLevel),
			levelCount:     C.uint32_t(info.Range.LevelCount),
			baseArrayLayer: C.uint32_t(info.Range.BaseArrayLayer),
			layerCount:     C.uint32_t(info.Range.LayerCount),
		},
	}
	inner := &viewInner{info: info}
	if err := checkResult(C.vkCreateImageView(d.h, &cinfo, nil, &inner.h)); err != nil {
		return ImageView{}, err
	}
	inner.key = d.views.insert(inner.h)
	return ImageView{inner: inner}, nil
}

// DestroyImageView destroys the view early.
func (d *Device) DestroyImageView(v ImageView) {
	if v.inner == nil || v.inner.h == nil {
		return
	}
	d.views.take(v.inner.key)
	C.vkDestroyImageView(d.h, v.inner.h, nil)
	v.inner.h = nil
}

// SamplerInfo describes a sampler to create.
type SamplerInfo struct {
	MagFilter   Filter
	MinFilter   Filter
	AddressMode SamplerAddressMode
}

// Sampler is a handle to a sampler.
type Sampler struct {
	h   C.VkSampler
	key int
}

// CreateSampler creates a sampler.
func (d *Device) CreateSampler(info SamplerInfo) (Sampler, error) {
	cinfo := C.VkSamplerCreateInfo{
		sType:        C.VK_STRUCTURE_TYPE_SAMPLER_CREATE_INFO,
		magFilter:    C.VkFilter(info.MagFilter),
		minFilter:    C.VkFilter(info.MinFilter),
		mipmapMode:   C.VK_SAMPLER_MIPMAP_MODE_NEAREST,
		addressModeU: C.VkSamplerAddressMode(info.AddressMode),
		addressModeV: C.VkSamplerAddressMode(info.AddressMode),
		addressModeW: C.VkSamplerAddressMode(info.AddressMode),
	}
	var s Sampler
	if err := checkResult(C.vkCreateSampler(d.h, &cinfo, nil, &s.h)); err != nil {
		return Sampler{}, err
	}
	s.key = d.samplers.insert(s.h)
	return s, nil
}

// ImageMemoryBarrier transitions an image between layouts and orders the
// accesses around the transition. OldLayout LayoutUndefined discards the
// previous contents.
type ImageMemoryBarrier struct {
	Image     Image
	SrcAccess Access
	DstAccess Access
	OldLayout ImageLayout
	NewLayout ImageLayout
	Range     ImageSubresourceRange
}

// InitializeImage returns a barrier that moves a freshly created image
// into layout, discarding whatever it held.
func InitializeImage(im Image, layout ImageLayout, dstAccess Access, aspect ImageAspect) ImageMemoryBarrier {
	return ImageMemoryBarrier{
		Image:     im,
		DstAccess: dstAccess,
		OldLayout: LayoutUndefined,
		NewLayout: layout,
		Range:     WholeImage(im, aspect),
	}
}

// TransitionImage returns a barrier between two known layouts.
func TransitionImage(im Image, old, new ImageLayout, srcAccess, dstAccess Access, aspect ImageAspect) ImageMemoryBarrier {
	return ImageMemoryBarrier{
		Image:     im,
		SrcAccess: srcAccess,
		DstAccess: dstAccess,
		OldLayout: old,
		NewLayout: new,
		Range:     WholeImage(im, aspect),
	}
}
