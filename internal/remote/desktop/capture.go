package desktop

import (
	"errors"
	"fmt"
	"sync"

	"github.com/breeze-rmm/displayhost/internal/logging"
)

var captureLog = logging.L("display.capture")

// CaptureHandle is a native capture bound to one display. It is owned by a
// single CaptureSession and released exactly once.
type CaptureHandle interface {
	// Width and Height are the negotiated frame size in pixels
	Width() int
	Height() int

	// Release frees the native capture resources
	Release()
}

// CaptureBackend constructs native captures.
type CaptureBackend interface {
	// OpenDisplay binds a capture to displayID at fps frames per second.
	// A nil handle or non-nil error means no usable capture was produced.
	OpenDisplay(displayID uint32, fps int) (CaptureHandle, error)
}

// NewCaptureBackend returns the platform capture backend.
func NewCaptureBackend() CaptureBackend {
	return newPlatformBackend()
}

// SessionState is the lifecycle state of a CaptureSession.
type SessionState int

const (
	StateUnconfigured SessionState = iota
	StateConfigured
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Geometry is a pixel size.
type Geometry struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// CaptureConfig holds configuration for opening a capture session
type CaptureConfig struct {
	// Selector names the display to capture ("" = main display)
	Selector string

	// FPS is the requested capture frame rate
	FPS int
}

// DefaultConfig returns a default capture configuration
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		Selector: "",
		FPS:      60,
	}
}

// ErrNotSupported is returned when screen capture is not supported on the platform
var ErrNotSupported = fmt.Errorf("screen capture not supported on this platform")

// ErrPermissionDenied is returned when screen capture permissions are not granted
var ErrPermissionDenied = fmt.Errorf("screen capture permission denied")

// ErrDisplayNotFound is returned when the specified display is not found
var ErrDisplayNotFound = fmt.Errorf("display not found")

var (
	// ErrCaptureConfigurationFailed wraps every failed configuration attempt.
	ErrCaptureConfigurationFailed = errors.New("capture configuration failed")
	ErrSessionConfigured          = errors.New("capture session already configured")
	ErrInvalidFPS                 = errors.New("invalid fps")
)

// CaptureSession owns one capture bound to a display. Configure is
// attempted once; callers wanting a retry construct a new session. Close
// must be called regardless of the outcome.
type CaptureSession struct {
	displayID uint32
	backend   CaptureBackend

	state       SessionState
	frame       Geometry
	environment Geometry

	handle      CaptureHandle
	releaseOnce sync.Once
}

// NewCaptureSession returns an unconfigured session bound to displayID.
func NewCaptureSession(backend CaptureBackend, displayID uint32) *CaptureSession {
	return &CaptureSession{
		displayID: displayID,
		backend:   backend,
		state:     StateUnconfigured,
	}
}

func (s *CaptureSession) DisplayID() uint32 { return s.displayID }

func (s *CaptureSession) State() SessionState { return s.state }

// FrameSize is the negotiated capture size; zero unless configured.
func (s *CaptureSession) FrameSize() Geometry { return s.frame }

// EnvironmentSize is the size input mapping works in. It mirrors FrameSize.
func (s *CaptureSession) EnvironmentSize() Geometry { return s.environment }

// Configure binds the native capture to the session's display at fps.
// On failure the session becomes StateFailed and the error wraps
// ErrCaptureConfigurationFailed.
func (s *CaptureSession) Configure(fps int) error {
	if s.state != StateUnconfigured {
		return fmt.Errorf("%w: state %s", ErrSessionConfigured, s.state)
	}

	if fps <= 0 {
		return s.fail(fps, fmt.Errorf("%w: %d", ErrInvalidFPS, fps))
	}

	handle, err := s.backend.OpenDisplay(s.displayID, fps)
	if err != nil {
		if handle != nil {
			handle.Release()
		}
		return s.fail(fps, err)
	}
	if handle == nil {
		return s.fail(fps, errors.New("no capture handle"))
	}

	w, h := handle.Width(), handle.Height()
	if w <= 0 || h <= 0 {
		handle.Release()
		return s.fail(fps, fmt.Errorf("unusable capture geometry %dx%d", w, h))
	}

	s.handle = handle
	s.frame = Geometry{Width: w, Height: h}
	s.environment = s.frame
	s.state = StateConfigured

	captureLog.Info("capture session configured",
		logging.KeyDisplayID, s.displayID,
		"fps", fps,
		"width", w,
		"height", h,
	)
	return nil
}

func (s *CaptureSession) fail(fps int, cause error) error {
	s.state = StateFailed
	s.frame = Geometry{}
	s.environment = Geometry{}
	err := fmt.Errorf("%w: display %d: %w", ErrCaptureConfigurationFailed, s.displayID, cause)
	captureLog.Warn("capture session configuration failed",
		logging.KeyDisplayID, s.displayID,
		"fps", fps,
		logging.KeyError, cause,
	)
	return err
}

// Close releases the native capture handle. Safe to call from any state and
// more than once.
func (s *CaptureSession) Close() error {
	s.releaseOnce.Do(func() {
		if s.handle != nil {
			s.handle.Release()
			s.handle = nil
		}
	})
	return nil
}
