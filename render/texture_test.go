package render

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
)

type fakeTexture struct {
	w, h      int
	data      []byte
	destroyed bool
	premul    bool
}

func (t *fakeTexture) Width() int               { return t.w }
func (t *fakeTexture) Height() int              { return t.h }
func (t *fakeTexture) Destroy()                 { t.destroyed = true }
func (t *fakeTexture) SetPremultiplied(p bool) { t.premul = p }

func (t *fakeTexture) UpdateData(d []byte) error {
	t.data = append(t.data[:0], d...)
	return nil
}

type fakeCreator struct {
	err     error
	created []*fakeTexture
}

func (c *fakeCreator) NewTextureFromRGBA(w, h int, data []byte) (gpucontext.Texture, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(data) != w*h*4 {
		return nil, errors.New("bad size")
	}
	tex := &fakeTexture{w: w, h: h, data: data}
	c.created = append(c.created, tex)
	return tex, nil
}

func TestExpandAlpha(t *testing.T) {
	plane := image.NewAlpha(image.Rect(0, 0, 2, 1))
	plane.Pix[0] = 10
	plane.Pix[1] = 255
	got := ExpandAlpha(plane, nil)
	want := []byte{10, 10, 10, 10, 255, 255, 255, 255}
	if string(got) != string(want) {
		t.Errorf("ExpandAlpha() = %v, want %v", got, want)
	}
}

func TestCreatorAllocator(t *testing.T) {
	creator := &fakeCreator{}
	a := NewCreatorAllocator(creator)

	tex, err := a.Allocate(TargetKey{Width: 2, Height: 2, Resolution: 1})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	ft := tex.(*fakeTexture)
	if !ft.premul {
		t.Error("Allocate() did not mark texture premultiplied")
	}

	plane := image.NewAlpha(image.Rect(0, 0, 2, 2))
	plane.Pix[3] = 128
	if err := a.Upload(tex, plane); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got := ft.data[15]; got != 128 {
		t.Errorf("uploaded alpha = %d, want 128", got)
	}

	small := image.NewAlpha(image.Rect(0, 0, 1, 1))
	if err := a.Upload(tex, small); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Upload(small) error = %v, want ErrSizeMismatch", err)
	}

	a.Destroy(tex)
	if !ft.destroyed {
		t.Error("Destroy() did not destroy host texture")
	}
}

func TestCreatorAllocatorError(t *testing.T) {
	boom := errors.New("device lost")
	a := NewCreatorAllocator(&fakeCreator{err: boom})
	if _, err := a.Allocate(TargetKey{Width: 1, Height: 1, Resolution: 1}); !errors.Is(err, boom) {
		t.Errorf("Allocate() error = %v, want wrapped %v", err, boom)
	}
}
