//go:build darwin && cgo

package desktop

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework CoreMedia -framework AppKit -framework ScreenCaptureKit

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <CoreMedia/CoreMedia.h>
#include <AppKit/AppKit.h>
#include <ScreenCaptureKit/ScreenCaptureKit.h>

typedef struct {
    const void* stream;
    int width;
    int height;
    int error;
} CaptureOpenResult;

// openDisplayCapture looks up the SCDisplay for displayID and builds an
// SCStream for it at the given frame rate. The stream is returned retained;
// the caller owns it and must pass it to releaseDisplayCapture.
CaptureOpenResult openDisplayCapture(uint32_t displayID, int fps) {
    __block CaptureOpenResult result = {0};
    __block SCDisplay* targetDisplay = nil;
    dispatch_semaphore_t sem = dispatch_semaphore_create(0);

    [SCShareableContent getShareableContentExcludingDesktopWindows:NO
                                             onScreenWindowsOnly:YES
                                             completionHandler:^(SCShareableContent* _Nullable content, NSError* _Nullable err) {
        if (err != nil || content == nil) {
            result.error = 3;
            dispatch_semaphore_signal(sem);
            return;
        }
        for (SCDisplay* display in content.displays) {
            if (display.displayID == displayID) {
                targetDisplay = display;
                break;
            }
        }
        if (targetDisplay == nil) result.error = 2;
        dispatch_semaphore_signal(sem);
    }];

    dispatch_semaphore_wait(sem, DISPATCH_TIME_FOREVER);
    if (result.error != 0) return result;

    // SCDisplay.width/height are in points; scale to native pixels.
    CGFloat scaleFactor = 1.0;
    for (NSScreen *screen in [NSScreen screens]) {
        NSNumber *screenNum = screen.deviceDescription[@"NSScreenNumber"];
        if (screenNum && [screenNum unsignedIntValue] == displayID) {
            scaleFactor = [screen backingScaleFactor];
            break;
        }
    }

    SCContentFilter* filter = [[SCContentFilter alloc] initWithDisplay:targetDisplay excludingWindows:@[]];
    SCStreamConfiguration* config = [[SCStreamConfiguration alloc] init];
    config.width = (size_t)(targetDisplay.width * scaleFactor);
    config.height = (size_t)(targetDisplay.height * scaleFactor);
    config.minimumFrameInterval = CMTimeMake(1, fps);
    config.pixelFormat = kCVPixelFormatType_32BGRA;
    config.showsCursor = YES;

    SCStream* stream = [[SCStream alloc] initWithFilter:filter configuration:config delegate:nil];
    if (stream == nil) {
        result.error = 7;
        return result;
    }

    result.stream = CFBridgingRetain(stream);
    result.width = (int)config.width;
    result.height = (int)config.height;
    return result;
}

void releaseDisplayCapture(const void* stream) {
    if (stream != NULL) {
        (void)CFBridgingRelease(stream);
    }
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// darwinCaptureHandle owns one retained SCStream.
type darwinCaptureHandle struct {
	mu     sync.Mutex
	stream unsafe.Pointer
	width  int
	height int
}

func (h *darwinCaptureHandle) Width() int  { return h.width }
func (h *darwinCaptureHandle) Height() int { return h.height }

func (h *darwinCaptureHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stream != nil {
		C.releaseDisplayCapture(h.stream)
		h.stream = nil
	}
}

// darwinBackend opens ScreenCaptureKit streams.
type darwinBackend struct{}

func newPlatformBackend() CaptureBackend {
	return darwinBackend{}
}

func (darwinBackend) OpenDisplay(displayID uint32, fps int) (CaptureHandle, error) {
	if version, err := hostPlatformVersion(); err == nil && !screenCaptureKitSupported(version) {
		return nil, fmt.Errorf("%w: macOS %s lacks ScreenCaptureKit", ErrNotSupported, version)
	}

	result := C.openDisplayCapture(C.uint32_t(displayID), C.int(fps))
	if result.error != 0 {
		return nil, translateDarwinError(int(result.error))
	}
	if result.stream == nil {
		return nil, fmt.Errorf("no capture stream")
	}

	return &darwinCaptureHandle{
		stream: result.stream,
		width:  int(result.width),
		height: int(result.height),
	}, nil
}

// translateDarwinError converts C error codes to Go errors
func translateDarwinError(code int) error {
	switch code {
	case 2:
		return ErrDisplayNotFound
	case 3:
		return ErrPermissionDenied
	case 7:
		return fmt.Errorf("failed to create capture stream")
	default:
		return fmt.Errorf("unknown error: %d", code)
	}
}

var _ CaptureBackend = darwinBackend{}
