//go:build !linux

package foundation

func physicalMemory() uint64 { return 0 }

func systemUptime() float64 { return 0 }

func kernelRelease() string { return "" }
