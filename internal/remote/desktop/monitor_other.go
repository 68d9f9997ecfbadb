//go:build !darwin || !cgo

package desktop

// otherDisplaySource reports both display queries as unsupported, so the
// catalog degrades to an empty set with main display 0.
type otherDisplaySource struct{}

// NewDisplaySource returns the platform display source.
func NewDisplaySource() DisplaySource {
	return otherDisplaySource{}
}

func (otherDisplaySource) ActiveDisplays() ([]NamedDisplay, error) {
	return nil, ErrNotSupported
}

func (otherDisplaySource) OnlineDisplayCount() (int, error) {
	return 0, ErrNotSupported
}

func (otherDisplaySource) OnlineDisplays(buf []uint32) (int, error) {
	return 0, ErrNotSupported
}

func (otherDisplaySource) DisplayName(id uint32) (string, bool) {
	return "", false
}

func (otherDisplaySource) MainDisplayID() uint32 {
	return 0
}
