package platform

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable_Windows(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:              "windows",
		Arch:            X64,
		ArchRaw:         "amd64",
		KernelArch:      "x86_64",
		Platform:        "microsoft windows 11 pro",
		PlatformVersion: "10.0.22631 build 22631",
	}

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("windows")},
		{"arch", `return platform.arch`, lua.LString("x64")},
		{"arch_raw", `return platform.arch_raw`, lua.LString("amd64")},
		{"kernel_arch", `return platform.kernel_arch`, lua.LString("x86_64")},
		{"name", `return platform.name`, lua.LString("microsoft windows 11 pro")},
		{"version", `return platform.version`, lua.LString("10.0.22631 build 22631")},
		{"is_windows", `return platform.is_windows`, lua.LTrue},
		{"is_x64", `return platform.is_x64`, lua.LTrue},
		{"is_x86", `return platform.is_x86`, lua.LFalse},
		{"when true", `return platform.when(platform.is_x64, "ts")`, lua.LString("ts")},
		{"when false", `return platform.when(platform.is_x86, "ts")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("failed to execute code: %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)

			if got.Type() != tt.want.Type() {
				t.Errorf("type mismatch: got %v, want %v", got.Type(), tt.want.Type())
				return
			}

			if got.String() != tt.want.String() {
				t.Errorf("value mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInjectPlatformTable_Unsupported(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{OS: "linux", Arch: Unsupported, ArchRaw: "arm64"}
	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if err := L.DoString(`return platform.arch`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	got := L.Get(-1)
	L.Pop(1)
	if got.String() != "unsupported" {
		t.Errorf("arch = %v, want unsupported", got)
	}
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "windows", Arch: X64}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
	}{
		{"modify existing field", `platform.os = "linux"`},
		{"add new field", `platform.custom = true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := L.DoString(tt.code)
			if err == nil {
				t.Fatal("expected error when modifying platform table")
			}
		})
	}

	err := L.DoString(`platform.os = "linux"`)
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Errorf("expected read-only error, got %v", err)
	}
}
