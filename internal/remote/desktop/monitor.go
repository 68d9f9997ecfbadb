package desktop

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/breeze-rmm/displayhost/internal/logging"
)

var catalogLog = logging.L("display.catalog")

// DisplayOrigin records which query produced a display descriptor.
type DisplayOrigin int

const (
	// OriginCatalog marks entries reported by the rich enumeration source.
	OriginCatalog DisplayOrigin = iota
	// OriginOnlineOnly marks entries only present in the raw online id list.
	OriginOnlineOnly
)

func (o DisplayOrigin) String() string {
	switch o {
	case OriginCatalog:
		return "catalog"
	case OriginOnlineOnly:
		return "online-only"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

func (o DisplayOrigin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Connectivity is the physical connection state known for a display.
type Connectivity int

const (
	ConnectivityConnected Connectivity = iota
	ConnectivityUnknown
)

func (c Connectivity) String() string {
	switch c {
	case ConnectivityConnected:
		return "connected"
	case ConnectivityUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("connectivity(%d)", int(c))
	}
}

func (c Connectivity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// DisplayDescriptor describes one addressable display in a catalog snapshot.
type DisplayDescriptor struct {
	ID           uint32        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Origin       DisplayOrigin `json:"origin" yaml:"origin"`
	Connectivity Connectivity  `json:"connectivity" yaml:"connectivity"`
}

// Selector returns the selector token that resolves to this display.
func (d DisplayDescriptor) Selector() string {
	return strconv.FormatUint(uint64(d.ID), 10)
}

// NamedDisplay is one entry of the rich enumeration source.
type NamedDisplay struct {
	ID   uint32
	Name string
}

// DisplaySource is the native query surface the catalog reconciles.
type DisplaySource interface {
	// ActiveDisplays returns the displays known to the rich enumeration API.
	ActiveDisplays() ([]NamedDisplay, error)

	// OnlineDisplayCount is the size half of the online id list protocol.
	OnlineDisplayCount() (int, error)

	// OnlineDisplays fills buf with online display ids and returns how many
	// entries were written. The result may differ from the earlier count.
	OnlineDisplays(buf []uint32) (int, error)

	// DisplayName looks up a human readable label for a display id.
	DisplayName(id uint32) (string, bool)

	// MainDisplayID returns the platform's designated main display.
	MainDisplayID() uint32
}

// ErrEnumerationDegraded is reported when one of the display sources failed
// and was treated as empty.
var ErrEnumerationDegraded = errors.New("display enumeration degraded")

// ErrNoScreens is returned by a DisplaySource whose named enumeration came
// back empty, e.g. with no window server session. The catalog then relies on
// the online id list alone.
var ErrNoScreens = errors.New("no screens reported")

// MemoryKind names the frame memory type an encoder wants to capture into.
// Display enumeration on this platform does not depend on it.
type MemoryKind string

const (
	MemorySystem       MemoryKind = "system"
	MemoryVideoToolbox MemoryKind = "videotoolbox"
)

// genericDisplayName is used for online-only displays the name lookup
// cannot label.
func genericDisplayName(id uint32) string {
	return fmt.Sprintf("Display %d", id)
}

// DisplayCatalog merges the rich enumeration source and the online id list
// into one deduplicated set. It holds no state between calls.
type DisplayCatalog struct {
	source DisplaySource
}

// NewDisplayCatalog returns a catalog that queries source on every call.
func NewDisplayCatalog(source DisplaySource) *DisplayCatalog {
	return &DisplayCatalog{source: source}
}

// MainDisplayID returns the platform default display.
func (c *DisplayCatalog) MainDisplayID() uint32 {
	return c.source.MainDisplayID()
}

// Enumerate returns the current displays: rich-source entries first, then
// displays only present in the online list. Source failures are logged and
// never abort enumeration.
func (c *DisplayCatalog) Enumerate() []DisplayDescriptor {
	displays, err := c.Snapshot()
	if err != nil {
		catalogLog.Warn("display enumeration degraded", "displays", len(displays), logging.KeyError, err)
	}
	return displays
}

// Snapshot is Enumerate that also hands back the degradation error, if
// any. The error wraps ErrEnumerationDegraded; descriptors are valid either way.
func (c *DisplayCatalog) Snapshot() ([]DisplayDescriptor, error) {
	var degraded []error

	active, err := c.source.ActiveDisplays()
	if err != nil {
		degraded = append(degraded, fmt.Errorf("%w: active display query: %w", ErrEnumerationDegraded, err))
		active = nil
	}

	online, err := c.onlineDisplays()
	if err != nil {
		degraded = append(degraded, fmt.Errorf("%w: online display list: %w", ErrEnumerationDegraded, err))
		online = nil
	}

	displays := make([]DisplayDescriptor, 0, len(active)+len(online))
	index := make(map[uint32]int, len(active)+len(online))

	for _, d := range active {
		if _, ok := index[d.ID]; ok {
			continue
		}
		index[d.ID] = len(displays)
		displays = append(displays, DisplayDescriptor{
			ID:           d.ID,
			Name:         d.Name,
			Origin:       OriginCatalog,
			Connectivity: ConnectivityConnected,
		})
	}

	for _, id := range online {
		if _, ok := index[id]; ok {
			continue
		}
		name, ok := c.source.DisplayName(id)
		if !ok || name == "" {
			name = genericDisplayName(id)
		}
		index[id] = len(displays)
		displays = append(displays, DisplayDescriptor{
			ID:           id,
			Name:         name,
			Origin:       OriginOnlineOnly,
			Connectivity: ConnectivityUnknown,
		})
	}

	catalogLog.Debug("enumerated displays",
		"catalog", len(active),
		"online", len(online),
		"merged", len(displays),
	)

	return displays, errors.Join(degraded...)
}

// onlineDisplays runs the count/fill protocol. Displays can appear or vanish
// between the two calls, so whatever the fill call wrote is used.
func (c *DisplayCatalog) onlineDisplays() ([]uint32, error) {
	count, err := c.source.OnlineDisplayCount()
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	if count <= 0 {
		return nil, nil
	}

	buf := make([]uint32, count)
	n, err := c.source.OnlineDisplays(buf)
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	if n != count {
		catalogLog.Debug("online display count changed between calls", "counted", count, "filled", n)
	}
	n = min(max(n, 0), len(buf))
	return buf[:n], nil
}

// DisplayNames lists the selector tokens of every current display, in
// enumeration order. kind is accepted for parity with other platforms.
func (c *DisplayCatalog) DisplayNames(kind MemoryKind) []string {
	displays := c.Enumerate()
	names := make([]string, 0, len(displays))
	for _, d := range displays {
		names = append(names, d.Selector())
	}
	return names
}
