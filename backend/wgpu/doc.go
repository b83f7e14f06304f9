// Package wgpu allocates mask render targets on a gogpu/wgpu HAL device.
//
// Allocator implements render.TextureAllocator with single-channel
// R8Unorm textures, so coverage planes are written to the GPU as they are
// without expanding them to RGBA:
//
//	dev, _ := adapter.Open(0, gputypes.DefaultLimits())
//	alloc := wgpu.NewAllocator(dev.Device, dev.Queue)
//	session, err := ggfx.NewSession(render.RenderContext{
//	    Camera:    cam,
//	    Allocator: alloc,
//	    Scene:     scene,
//	})
//
// Hosts whose textures come from gpucontext.TextureCreator use
// render.CreatorAllocator instead.
package wgpu
