package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when mediapipe_service.py cannot be located.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

const scriptName = "mediapipe_service.py"

// Service modes.
const (
	modeHands = "hands"
	modeFaces = "faces"
)

// service runs the Python MediaPipe process. Each request is a 4-byte
// big-endian length followed by a JPEG frame; each reply is one JSON line.
// The process starts on the first request and stops after IdleTimeout
// without requests.
type service struct {
	mode   string
	config Config
	script string
	python string

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	idleTimer *time.Timer
}

func newService(mode string, config Config) (*service, error) {
	script := config.Script
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}

	python := config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	return &service{mode: mode, config: config, script: script, python: python}, nil
}

func (s *service) args() []string {
	return []string{
		s.script,
		"--mode", s.mode,
		"--max-hands", strconv.Itoa(s.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(s.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(s.config.MinTrackingConf, 'f', -1, 64),
	}
}

// request sends frame and decodes the reply into out.
func (s *service) request(frame *gocv.Mat, out any) error {
	if frame == nil || frame.Empty() {
		return errors.New("empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return err
	}

	if err := writeFrame(s.stdin, buf.GetBytes()); err != nil {
		s.shutdown()
		return err
	}
	if err := readReply(s.stdout, out); err != nil {
		s.shutdown()
		return err
	}

	s.resetIdleTimer()
	return nil
}

func (s *service) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *service) ensureStarted() error {
	if s.started {
		return nil
	}

	s.cmd = exec.Command(s.python, s.args()...)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	return nil
}

func (s *service) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	return err
}

func (s *service) resetIdleTimer() {
	if s.config.IdleTimeout <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(s.config.IdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shutdown()
	})
}

// writeFrame writes one length-prefixed frame.
func writeFrame(w io.Writer, data []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// readReply reads one JSON line. A reply carrying an "error" field is
// returned as an error.
func readReply(r *bufio.Reader, out any) error {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(line, &failure); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if failure.Error != "" {
		return fmt.Errorf("mediapipe service: %s", failure.Error)
	}

	if err := json.Unmarshal(line, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func findMediaPipeScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		filepath.Join("scripts", scriptName),
		filepath.Join("..", "scripts", scriptName),
		filepath.Join(execDir, "scripts", scriptName),
		filepath.Join(os.Getenv("HOME"), ".handcursor", "scripts", scriptName),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		filepath.Join("venv", "bin", "python"),
		filepath.Join("..", "venv", "bin", "python"),
		filepath.Join(execDir, "venv", "bin", "python"),
		filepath.Join(os.Getenv("HOME"), ".handcursor", "venv", "bin", "python"),
	)
}

func firstExisting(paths ...string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
