package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/posecue/internal/mailbox"
)

// StreamInterval is the pause between MJPEG parts, about 15 FPS.
const StreamInterval = 66 * time.Millisecond

// StreamHandler serves the rendered frames as MJPEG.
type StreamHandler struct {
	frames *mailbox.Slot[[]byte]
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *mailbox.Slot[[]byte]) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is only
// sent once; the client waits while the pipeline has nothing new.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	var sent uint64
	for {
		seq := h.frames.Seq()
		if seq != sent {
			if buf, ok := h.frames.Latest(); ok && len(buf) > 0 {
				if err := writePart(w, buf); err != nil {
					return
				}
				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
