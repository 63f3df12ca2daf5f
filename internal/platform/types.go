// Package platform detects the host properties that decide which PHP build
// variant can be installed.
//
// The architecture is taken from the running process (runtime.GOARCH), not
// from the kernel: a 32-bit pwin on a 64-bit Windows installs 32-bit builds.
// Operating system details gathered through gopsutil are informational and
// are exposed to Lua configuration files as a read-only table.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// Arch is the CPU architecture token used in PHP build variant names.
type Arch int

const (
	// Unsupported marks an architecture PHP for Windows does not publish builds for.
	Unsupported Arch = iota
	// X86 is 32-bit x86.
	X86
	// X64 is 64-bit x86.
	X64
)

// String returns the token used in variant names ("x86", "x64").
func (a Arch) String() string {
	switch a {
	case X86:
		return "x86"
	case X64:
		return "x64"
	default:
		return "unsupported"
	}
}

// MarshalText implements encoding.TextMarshaler.
// The persisted spelling ("X86", "X64", "Unsupported") matches existing lock files.
func (a Arch) MarshalText() ([]byte, error) {
	switch a {
	case X86:
		return []byte("X86"), nil
	case X64:
		return []byte("X64"), nil
	default:
		return []byte("Unsupported"), nil
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. Both the persisted and
// the variant token spellings are accepted.
func (a *Arch) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "x86":
		*a = X86
	case "x64":
		*a = X64
	case "unsupported":
		*a = Unsupported
	default:
		return fmt.Errorf("unknown architecture: %q", text)
	}
	return nil
}

// ArchFromGOARCH maps a Go architecture name onto a PHP build architecture.
func ArchFromGOARCH(goarch string) Arch {
	switch goarch {
	case "386":
		return X86
	case "amd64":
		return X64
	default:
		return Unsupported
	}
}

// Info contains platform detection information.
type Info struct {
	OS              string // "windows", "linux", "darwin"
	Arch            Arch   // process architecture
	ArchRaw         string // GOARCH of the running process
	KernelArch      string // architecture reported by the kernel, may be empty
	Platform        string // e.g. "microsoft windows 11 pro", "ubuntu"
	Family          string // e.g. "standalone workstation", "debian"
	PlatformVersion string // e.g. "10.0.22631 build 22631", "22.04"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsX64 returns true if the process runs as 64-bit x86.
func (i *Info) IsX64() bool {
	return i.Arch == X64
}

// IsX86 returns true if the process runs as 32-bit x86.
func (i *Info) IsX86() bool {
	return i.Arch == X86
}

// Supported reports whether PHP for Windows publishes builds for this architecture.
func (i *Info) Supported() bool {
	return i.Arch != Unsupported
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
