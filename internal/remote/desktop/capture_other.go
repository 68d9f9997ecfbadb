//go:build !darwin || !cgo

package desktop

// otherBackend is the capture backend for builds without the ScreenCaptureKit
// bindings (non-macOS, or macOS built without CGO).
type otherBackend struct{}

func newPlatformBackend() CaptureBackend {
	return otherBackend{}
}

// OpenDisplay always fails with ErrNotSupported.
func (otherBackend) OpenDisplay(displayID uint32, fps int) (CaptureHandle, error) {
	return nil, ErrNotSupported
}
