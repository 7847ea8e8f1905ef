package capture

import (
	"image"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	cam := NewMockCamera([]*image.RGBA{SolidFrame(64, 48, 10), SolidFrame(64, 48, 200)}, false)

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() before Open error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	f1, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f1.Width != 64 || f1.Height != 48 {
		t.Errorf("frame size = %dx%d, want 64x48", f1.Width, f1.Height)
	}

	f2, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f2.Image.Pix[0] != 200 {
		t.Errorf("second frame level = %d, want 200", f2.Image.Pix[0])
	}

	// Third read should fail (no loop)
	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error after all frames consumed")
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d, want 2", cam.Reads())
	}
}

func TestMockCamera_Loop(t *testing.T) {
	cam := NewMockCamera([]*image.RGBA{SolidFrame(8, 8, 0)}, true)
	cam.Open()
	defer cam.Close()

	// Should loop indefinitely
	for i := 0; i < 5; i++ {
		if _, err := cam.ReadFrame(); err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
	}
}

func TestMockCamera_FramesAreCopies(t *testing.T) {
	src := SolidFrame(4, 4, 50)
	cam := NewMockCamera([]*image.RGBA{src}, true)
	cam.Open()

	f, _ := cam.ReadFrame()
	f.Image.Pix[0] = 255

	if src.Pix[0] != 50 {
		t.Error("mutating a served frame changed the recording")
	}
}

func TestFrame_Clone(t *testing.T) {
	f := NewFrame(SolidFrame(4, 4, 7), time.UnixMilli(1000))
	c := f.Clone()
	c.Image.Pix[0] = 99

	if f.Image.Pix[0] != 7 {
		t.Error("Clone shares pixel memory")
	}
	if c.Timestamp != 1000 || c.Width != 4 || c.Height != 4 {
		t.Errorf("clone = %+v", c)
	}
}

func TestToRGBA(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 2, 3, gocv.MatTypeCV8UC3)
	defer mat.Close()

	img, err := ToRGBA(mat)
	if err != nil {
		t.Fatalf("ToRGBA() error = %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", img.Bounds())
	}
	// BGR blue becomes RGBA blue.
	if got := img.RGBAAt(0, 0); got.B != 255 || got.R != 0 || got.A != 255 {
		t.Errorf("pixel = %v, want opaque blue", got)
	}
}
