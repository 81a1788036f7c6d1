//go:build linux

package foundation

import (
	"golang.org/x/sys/unix"
)

// physicalMemory returns the installed memory in bytes, 0 if unknown.
func physicalMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}

// systemUptime returns seconds since boot.
func systemUptime() float64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return float64(info.Uptime)
}

// kernelRelease returns the uname(2) release string, e.g. "6.8.0-45-generic".
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
