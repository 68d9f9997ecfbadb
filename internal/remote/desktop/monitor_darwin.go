//go:build darwin && cgo

package desktop

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework CoreGraphics -framework AppKit

#include <CoreGraphics/CoreGraphics.h>
#include <AppKit/AppKit.h>
#include <string.h>

#define DISPLAY_NAME_MAX 256

typedef struct {
    uint32_t id;
    char name[DISPLAY_NAME_MAX];
} DisplayEntry;

static void copyScreenName(NSScreen* screen, char* out, size_t len) {
    out[0] = '\0';
    if (screen == nil) return;
    NSString* name = nil;
    if (@available(macOS 10.15, *)) {
        name = screen.localizedName;
    }
    if (name == nil) return;
    strlcpy(out, name.UTF8String, len);
}

// activeDisplays fills out with up to max displays AppKit currently knows
// about and returns the number written. Screens without an NSScreenNumber
// are skipped.
int activeDisplays(DisplayEntry* out, int max) {
    @autoreleasepool {
        int n = 0;
        for (NSScreen* screen in [NSScreen screens]) {
            if (n >= max) break;
            NSNumber* screenNum = screen.deviceDescription[@"NSScreenNumber"];
            if (screenNum == nil) continue;
            out[n].id = [screenNum unsignedIntValue];
            copyScreenName(screen, out[n].name, DISPLAY_NAME_MAX);
            n++;
        }
        return n;
    }
}

int activeDisplayCapacity(void) {
    @autoreleasepool {
        return (int)[[NSScreen screens] count];
    }
}

// lookupDisplayName writes the AppKit name of id into out.
// Returns 1 when found, 0 otherwise.
int lookupDisplayName(uint32_t id, char* out, int len) {
    @autoreleasepool {
        for (NSScreen* screen in [NSScreen screens]) {
            NSNumber* screenNum = screen.deviceDescription[@"NSScreenNumber"];
            if (screenNum && [screenNum unsignedIntValue] == id) {
                copyScreenName(screen, out, (size_t)len);
                return out[0] != '\0';
            }
        }
        return 0;
    }
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

const displayNameMax = 256

// darwinDisplaySource implements DisplaySource with AppKit for the named
// enumeration and CoreGraphics for the online id list.
type darwinDisplaySource struct{}

// NewDisplaySource returns the platform display source.
func NewDisplaySource() DisplaySource {
	return darwinDisplaySource{}
}

func (darwinDisplaySource) ActiveDisplays() ([]NamedDisplay, error) {
	// [NSScreen screens] is empty, never nil, when there is no window server
	// session to ask.
	capacity := int(C.activeDisplayCapacity())
	if capacity <= 0 {
		return nil, ErrNoScreens
	}

	entries := make([]C.DisplayEntry, capacity)
	n := int(C.activeDisplays(&entries[0], C.int(capacity)))

	displays := make([]NamedDisplay, 0, n)
	for _, e := range entries[:n] {
		displays = append(displays, NamedDisplay{
			ID:   uint32(e.id),
			Name: C.GoString(&e.name[0]),
		})
	}
	return displays, nil
}

func (darwinDisplaySource) OnlineDisplayCount() (int, error) {
	var count C.uint32_t
	if cgErr := C.CGGetOnlineDisplayList(0, nil, &count); cgErr != C.kCGErrorSuccess {
		return 0, cgError(int32(cgErr))
	}
	return int(count), nil
}

func (darwinDisplaySource) OnlineDisplays(buf []uint32) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var count C.uint32_t
	ids := (*C.CGDirectDisplayID)(unsafe.Pointer(&buf[0]))
	if cgErr := C.CGGetOnlineDisplayList(C.uint32_t(len(buf)), ids, &count); cgErr != C.kCGErrorSuccess {
		return 0, cgError(int32(cgErr))
	}
	return int(count), nil
}

func (darwinDisplaySource) DisplayName(id uint32) (string, bool) {
	var buf [displayNameMax]C.char
	if C.lookupDisplayName(C.uint32_t(id), &buf[0], C.int(len(buf))) == 0 {
		return "", false
	}
	return C.GoString(&buf[0]), true
}

func (darwinDisplaySource) MainDisplayID() uint32 {
	return uint32(C.CGMainDisplayID())
}

func cgError(code int32) error {
	return fmt.Errorf("CoreGraphics error %d", code)
}

var _ DisplaySource = darwinDisplaySource{}
