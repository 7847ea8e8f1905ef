package transform

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/render"
)

// ThresholdCutoff is the brightness above which a pixel turns white.
const ThresholdCutoff = 127

// Threshold binarizes img in place: pixels whose channel mean is above
// ThresholdCutoff become white, the rest black. Alpha is left untouched.
//
// The channel sum is compared against 3*ThresholdCutoff in float so that
// a mean of 127.33 still counts as brighter than the cutoff.
func Threshold(img *image.RGBA) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, packPixels(img))
	if err != nil {
		return fmt.Errorf("threshold: wrap frame: %w", err)
	}
	defer src.Close()

	channels := gocv.Split(src)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.Merge(channels[:3], &rgb)

	rgbF := gocv.NewMat()
	defer rgbF.Close()
	rgb.ConvertTo(&rgbF, gocv.MatTypeCV32FC3)

	// 1x3 kernel of ones sums the channels into a single float plane
	kernel := gocv.NewMatWithSize(1, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for i := 0; i < 3; i++ {
		kernel.SetFloatAt(0, i, 1)
	}

	sum := gocv.NewMat()
	defer sum.Close()
	gocv.Transform(rgbF, &sum, kernel)

	binF := gocv.NewMat()
	defer binF.Close()
	gocv.Threshold(sum, &binF, 3*ThresholdCutoff, 255, gocv.ThresholdBinary)

	bin := gocv.NewMat()
	defer bin.Close()
	binF.ConvertTo(&bin, gocv.MatTypeCV8U)

	out := gocv.NewMat()
	defer out.Close()
	gocv.Merge([]gocv.Mat{bin, bin, bin, channels[3]}, &out)

	unpackPixels(img, out.ToBytes())
	return nil
}

// packPixels returns img's pixels as one contiguous row-major buffer.
func packPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	row := b.Dx() * 4
	if img.Stride == row {
		return append([]byte(nil), img.Pix[:row*b.Dy()]...)
	}
	buf := make([]byte, 0, row*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		buf = append(buf, img.Pix[i:i+row]...)
	}
	return buf
}

// unpackPixels copies a contiguous buffer back into img.
func unpackPixels(img *image.RGBA, buf []byte) {
	b := img.Bounds()
	row := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(img.Pix[i:i+row], buf[y*row:(y+1)*row])
	}
}

// ThresholdTransform binarizes the frame and redraws it.
type ThresholdTransform struct{}

func (ThresholdTransform) Apply(frame *image.RGBA, s render.Surface) {
	if err := Threshold(frame); err != nil {
		log.Warn("threshold failed, drawing frame unchanged", "err", err)
	}
	s.DrawFrame(frame, false)
}
