package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import "unsafe"

// AttachmentInfo describes one render pass attachment.
type AttachmentInfo struct {
	Format        Format
	Samples       SampleCount
	LoadOp        LoadOp
	StoreOp       StoreOp
	InitialLayout ImageLayout
	FinalLayout   ImageLayout
}

// SubpassInfo references attachments by index into RenderPassInfo.
type SubpassInfo struct {
	ColorAttachments []uint32
	DepthAttachment  *uint32
}

// RenderPassInfo describes a render pass to create.
type RenderPassInfo struct {
	Attachments []AttachmentInfo
	Subpasses   []SubpassInfo
}

type renderPassInner struct {
	h           C.VkRenderPass
	key         int
	attachments int
}

// RenderPass is a handle to a render pass.
type RenderPass struct {
	inner *renderPassInner
}

// AttachmentCount returns how many attachments the pass declares. Begin
// commands must supply exactly this many clear values.
func (rp RenderPass) AttachmentCount() int { return rp.inner.attachments }

// CreateRenderPass creates a render pass.
func (d *Device) CreateRenderPass(info RenderPassInfo) (RenderPass, error) {
	na := len(info.Attachments)
	ca := (*C.VkAttachmentDescription)(C.malloc(C.size_t(na) * C.sizeof_VkAttachmentDescription))
	defer C.free(unsafe.Pointer(ca))
	as := unsafe.Slice(ca, na)
	for i, a := range info.Attachments {
		samples := a.Samples
		if samples == 0 {
			samples = Samples1
		}
		as[i] = C.VkAttachmentDescription{
			format:         C.VkFormat(a.Format),
			samples:        C.VkSampleCountFlagBits(samples),
			loadOp:         C.VkAttachmentLoadOp(a.LoadOp),
			storeOp:        C.VkAttachmentStoreOp(a.StoreOp),
			stencilLoadOp:  C.VK_ATTACHMENT_LOAD_OP_DONT_CARE,
			stencilStoreOp: C.VK_ATTACHMENT_STORE_OP_DONT_CARE,
			initialLayout:  C.VkImageLayout(a.InitialLayout),
			finalLayout:    C.VkImageLayout(a.FinalLayout),
		}
	}

	ns := len(info.Subpasses)
	cs := (*C.VkSubpassDescription)(C.malloc(C.size_t(ns) * C.sizeof_VkSubpassDescription))
	defer C.free(unsafe.Pointer(cs))
	var frees []unsafe.Pointer
	defer func() {
		for _, p := range frees {
			C.free(p)
		}
	}()
	ss := unsafe.Slice(cs, ns)
	for i, sp := range info.Subpasses {
		ss[i] = C.VkSubpassDescription{
			pipelineBindPoint: C.VK_PIPELINE_BIND_POINT_GRAPHICS,
		}
		if n := len(sp.ColorAttachments); n > 0 {
			p := (*C.VkAttachmentReference)(C.malloc(C.size_t(n) * C.sizeof_VkAttachmentReference))
			frees = append(frees, unsafe.Pointer(p))
			refs := unsafe.Slice(p, n)
			for j, idx := range sp.ColorAttachments {
				refs[j] = C.VkAttachmentReference{
					attachment: C.uint32_t(idx),
					layout:     C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL,
				}
			}
			ss[i].colorAttachmentCount = C.uint32_t(n)
			ss[i].pColorAttachments = p
		}
		if sp.DepthAttachment != nil {
			p := (*C.VkAttachmentReference)(C.malloc(C.sizeof_VkAttachmentReference))
			frees = append(frees, unsafe.Pointer(p))
			*p = C.VkAttachmentReference{
				attachment: C.uint32_t(*sp.DepthAttachment),
				layout:     C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL,
			}
			ss[i].pDepthStencilAttachment = p
		}
	}

	cinfo := C.VkRenderPassCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_RENDER_PASS_CREATE_INFO,
		attachmentCount: C.uint32_t(na),
		pAttachments:    ca,
		subpassCount:    C.uint32_t(ns),
		pSubpasses:      cs,
	}

	inner := &renderPassInner{attachments: na}
	if err := checkResult(C.vkCreateRenderPass(d.h, &cinfo, nil, &inner.h)); err != nil {
		return RenderPass{}, err
	}
	inner.key = d.renderPasses.insert(inner.h)
	return RenderPass{inner: inner}, nil
}

// FramebufferInfo describes a framebuffer to create. Attachments must
// match the render pass declaration in count and format.
type FramebufferInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
}

type framebufferInner struct {
	info FramebufferInfo
	h    C.VkFramebuffer
	key  int
}

// Framebuffer is a handle to a framebuffer.
type Framebuffer struct {
	inner *framebufferInner
}

// Info returns the creation parameters.
func (f Framebuffer) Info() FramebufferInfo { return f.inner.info }

// CreateFramebuffer creates a framebuffer.
func (d *Device) CreateFramebuffer(info FramebufferInfo) (Framebuffer, error) {
	if len(info.Attachments) != info.RenderPass.AttachmentCount() {
		panic("render: framebuffer attachment count does not match render pass")
	}
	n := len(info.Attachments)
	cv := (*C.VkImageView)(C.malloc(C.size_t(n) * C.sizeof_VkImageView))
	defer C.free(unsafe.Pointer(cv))
	vs := unsafe.Slice(cv, n)
	for i, v := range info.Attachments {
		vs[i] = v.inner.h
	}
	cinfo := C.VkFramebufferCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_FRAMEBUFFER_CREATE_INFO,
		renderPass:      info.RenderPass.inner.h,
		attachmentCount: C.uint32_t(n),
		pAttachments:    cv,
		width:           C.uint32_t(info.Extent.Width),
		height:          C.uint32_t(info.Extent.Height),
		layers:          1,
	}
	inner := &framebufferInner{info: info}
	if err := checkResult(C.vkCreateFramebuffer(d.h, &cinfo, nil, &inner.h)); err != nil {
		return Framebuffer{}, err
	}
	inner.key = d.framebuffers.insert(inner.h)
	return Framebuffer{inner: inner}, nil
}

// DestroyFramebuffer destroys the framebuffer early. The caller must
// know no submitted work still uses it.
func (d *Device) DestroyFramebuffer(f Framebuffer) {
	if f.inner == nil || f.inner.h == nil {
		return
	}
	d.framebuffers.take(f.inner.key)
	C.vkDestroyFramebuffer(d.h, f.inner.h, nil)
	f.inner.h = nil
}
