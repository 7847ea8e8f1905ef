package capture

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Frame is a captured video frame in RGBA. The pipeline owns Image for the
// duration of one tick and may transform it in place.
type Frame struct {
	Image     *image.RGBA
	Timestamp int64
	Width     int
	Height    int
}

// NewFrame wraps img as a Frame captured at ts.
func NewFrame(img *image.RGBA, ts time.Time) *Frame {
	b := img.Bounds()
	return &Frame{
		Image:     img,
		Timestamp: ts.UnixMilli(),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	img := image.NewRGBA(f.Image.Rect)
	copy(img.Pix, f.Image.Pix)
	return &Frame{
		Image:     img,
		Timestamp: f.Timestamp,
		Width:     f.Width,
		Height:    f.Height,
	}
}

// ToRGBA converts a BGR camera Mat to an RGBA image.
func ToRGBA(mat gocv.Mat) (*image.RGBA, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("convert frame: empty mat")
	}

	rgba := gocv.NewMat()
	defer rgba.Close()

	switch mat.Channels() {
	case 1:
		gocv.CvtColor(mat, &rgba, gocv.ColorGrayToRGBA)
	case 3:
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRToRGBA)
	case 4:
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRAToRGBA)
	default:
		return nil, fmt.Errorf("convert frame: unsupported channel count %d", mat.Channels())
	}

	img := image.NewRGBA(image.Rect(0, 0, rgba.Cols(), rgba.Rows()))
	copy(img.Pix, rgba.ToBytes())
	return img, nil
}
