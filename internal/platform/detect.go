package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns the process architecture and, when gopsutil can read them,
// operating system details.
//
// Failing to read OS details is not an error: the architecture alone decides
// which build gets installed. A cancelled context is.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      runtime.GOOS,
		Arch:    ArchFromGOARCH(runtime.GOARCH),
		ArchRaw: runtime.GOARCH,
	}

	platform, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	info.Platform = normalize(platform)
	info.Family = normalize(family)
	info.PlatformVersion = normalize(version)

	if kernelArch, err := host.KernelArch(); err == nil {
		info.KernelArch = normalize(kernelArch)
	}

	return info, nil
}

// StaticDetector returns a fixed Info. Useful in tests and when detection
// has already happened.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured info and error.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Info, s.Err
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
