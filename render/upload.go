package render

// CreateImageWithData creates a device-local image, uploads data through a
// staging buffer and transitions the image to finalLayout. The call blocks
// until the upload completes on the queue.
func (d *Device) CreateImageWithData(q *Queue, info ImageInfo, data []byte, finalLayout ImageLayout, finalAccess Access) (Image, error) {
	info.Usage |= ImageUsageTransferDst

	im, err := d.CreateImage(info)
	if err != nil {
		return Image{}, err
	}
	staging, err := d.CreateBufferWithData(BufferUsageTransferSrc, data)
	if err != nil {
		d.DestroyImage(im)
		return Image{}, err
	}
	defer d.DestroyBuffer(staging)

	undo := func(err error) (Image, error) {
		d.DestroyImage(im)
		return Image{}, err
	}

	enc, err := q.CreateEncoder()
	if err != nil {
		return undo(err)
	}
	enc.PipelineBarrier(StageTopOfPipe, StageTransfer, 0, AccessTransferWrite,
		[]ImageMemoryBarrier{InitializeImage(im, LayoutTransferDst, AccessTransferWrite, AspectColor)})
	enc.CopyBufferToImage(staging, im, LayoutTransferDst, AspectColor)
	enc.PipelineBarrier(StageTransfer, StageAllCommands, AccessTransferWrite, finalAccess,
		[]ImageMemoryBarrier{TransitionImage(im, LayoutTransferDst, finalLayout, AccessTransferWrite, finalAccess, AspectColor)})
	cb, err := enc.Finish(d)
	if err != nil {
		return undo(err)
	}

	fence, err := d.CreateFence(false)
	if err != nil {
		return undo(err)
	}
	defer d.DestroyFence(fence)
	if err := q.Submit(cb, nil, nil, fence); err != nil {
		return undo(err)
	}
	if err := d.WaitFences([]Fence{fence}, true); err != nil {
		return undo(err)
	}
	q.Free(cb)
	return im, nil
}
