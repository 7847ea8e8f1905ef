package pose

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecue/internal/log"
)

// IdleTimeout is how long the service may sit unused before it is stopped.
const IdleTimeout = 30 * time.Second

// PoseNetDetector implements Detector using a Python PoseNet subprocess.
//
// Protocol: on start the options are written as one JSON line and the service
// answers with one line once the model is loaded. Each frame is then sent as
// a 4-byte big-endian length followed by JPEG bytes, and answered with one
// JSON line holding the poses.
type PoseNetDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	idleTimer  *time.Timer
	idle       time.Duration
	argv       []string // overrides the python command line when set
}

// NewPoseNetDetector creates a new PoseNet detector.
// The Python process is started lazily on first detection.
func NewPoseNetDetector(config Config) (*PoseNetDetector, error) {
	scriptPath := findPoseNetScript()
	if scriptPath == "" {
		return nil, ErrServiceNotFound
	}

	return &PoseNetDetector{
		config:     config,
		scriptPath: scriptPath,
		idle:       IdleTimeout,
	}, nil
}

// Detect encodes the frame and returns the poses reported by the service.
func (d *PoseNetDetector) Detect(frame image.Image) ([]Pose, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	// A broken pipe means the service died: drop it so the next frame
	// starts a fresh one
	if _, err := d.stdin.Write(length); err != nil {
		d.abort()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		d.abort()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		d.abort()
		return nil, fmt.Errorf("read response: %w", err)
	}

	poses, err := parsePoses([]byte(line))
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return poses, nil
}

// Close shuts down the Python process.
func (d *PoseNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *PoseNetDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	if d.argv != nil {
		d.cmd = exec.Command(d.argv[0], d.argv[1:]...)
	} else {
		pythonPath := findVenvPython()
		if pythonPath == "" {
			pythonPath = "python3"
		}
		d.cmd = exec.Command(pythonPath, d.scriptPath)
	}

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	if err := d.handshake(); err != nil {
		d.abort()
		return err
	}

	return nil
}

// handshake sends the estimator options and waits for the model to load.
func (d *PoseNetDetector) handshake() error {
	options, err := json.Marshal(map[string]Config{"options": d.config})
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	if _, err := d.stdin.Write(append(options, '\n')); err != nil {
		return fmt.Errorf("write options: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read handshake: %w", err)
	}

	var ready struct {
		Ready bool   `json:"ready"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &ready); err != nil {
		return fmt.Errorf("parse handshake: %w", err)
	}
	if !ready.Ready {
		return fmt.Errorf("pose model failed to load: %s", ready.Error)
	}

	log.Info("model loaded", "architecture", d.config.Architecture, "resolution", d.config.InputResolution)
	return nil
}

func (d *PoseNetDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

// abort kills a service that stopped answering and forgets it.
func (d *PoseNetDetector) abort() {
	if !d.started {
		return
	}
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.shutdown()
	log.Warn("pose service stopped, restarting on next frame")
}

// resetIdleTimer must be called with d.mu held.
func (d *PoseNetDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d.idle, func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		// A Detect that ran while this callback waited for the lock has
		// already armed a newer timer
		if d.idleTimer != t {
			return
		}
		log.Debug("pose service idle, stopping")
		d.shutdown()
	})
	d.idleTimer = t
}

// parsePoses decodes one response line from the service.
func parsePoses(line []byte) ([]Pose, error) {
	var response struct {
		Poses []Pose `json:"poses"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("pose service: %s", response.Error)
	}
	return response.Poses, nil
}

func findPoseNetScript() string {
	if p := os.Getenv("POSECUE_POSE_SERVICE"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/posenet_service.py",
		"../scripts/posenet_service.py",
		filepath.Join(execDir, "scripts/posenet_service.py"),
		filepath.Join(os.Getenv("HOME"), ".posecue/scripts/posenet_service.py"),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".posecue/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
