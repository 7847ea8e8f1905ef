package render

import "gocv.io/x/gocv"

// Window shows canvases in a native OpenCV window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show displays the canvas and pumps window events.
// It reports false once the user pressed ESC or closed the window.
func (w *Window) Show(c *Canvas) bool {
	w.window.IMShow(c.Mat())
	if w.window.WaitKey(1) == 27 {
		return false
	}
	return w.window.IsOpen()
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
