package desktop

import (
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// HostPlatform describes the OS the capture layer runs on.
type HostPlatform struct {
	Platform string `json:"platform" yaml:"platform"`
	Family   string `json:"family" yaml:"family"`
	Version  string `json:"version" yaml:"version"`
}

// DetectHostPlatform reads the OS platform and version via gopsutil.
func DetectHostPlatform() (HostPlatform, error) {
	platform, family, version, err := host.PlatformInformation()
	if err != nil {
		return HostPlatform{}, err
	}
	return HostPlatform{Platform: platform, Family: family, Version: version}, nil
}

func hostPlatformVersion() (string, error) {
	p, err := DetectHostPlatform()
	if err != nil {
		return "", err
	}
	return p.Version, nil
}

// screenCaptureKitSupported reports whether a macOS version string is at
// least 12.3. Unparseable versions are assumed supported and left for the
// native call to reject.
func screenCaptureKitSupported(version string) bool {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return true
	}
	minor := 0
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			minor = m
		}
	}
	return major > 12 || (major == 12 && minor >= 3)
}
