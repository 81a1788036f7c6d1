package foundation

import (
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/dynamic/typeenc"
	"github.com/chazu/dynamic/typemap"
)

// ProcessInfo is the NSProcessInfo of the running process.
type ProcessInfo struct {
	mu          sync.RWMutex
	name        string
	arguments   []string
	environment map[string]string
}

func newProcessInfo(name string, args []string, env map[string]string) *ProcessInfo {
	return &ProcessInfo{name: name, arguments: args, environment: env}
}

// Name returns the process name.
func (p *ProcessInfo) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName replaces the process name.
func (p *ProcessInfo) SetName(name string) {
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
}

// OperatingSystemVersion parses the kernel release into a version triple.
// Fields that cannot be read are zero.
func (p *ProcessInfo) OperatingSystemVersion() typemap.OperatingSystemVersion {
	return parseRelease(kernelRelease())
}

func parseRelease(release string) typemap.OperatingSystemVersion {
	var parts [3]int64
	fields := strings.SplitN(release, ".", 3)
	for i, field := range fields {
		end := strings.IndexFunc(field, func(r rune) bool { return r < '0' || r > '9' })
		if end >= 0 {
			field = field[:end]
		}
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			break
		}
		parts[i] = n
		if end >= 0 {
			break
		}
	}
	return typemap.OperatingSystemVersion{Major: parts[0], Minor: parts[1], Patch: parts[2]}
}

func installProcessInfo(f *Foundation) {
	m := f.Space.NewMethodTable()
	p := f.process

	m.AddClassMethod("processInfo", "@16@0:8", func(any, []any) (any, error) {
		return p, nil
	})

	m.AddInstanceMethod("processIdentifier", "i16@0:8", func(any, []any) (any, error) {
		return int32(os.Getpid()), nil
	})
	m.AddInstanceMethod("processorCount", "Q16@0:8", func(any, []any) (any, error) {
		return uint64(runtime.NumCPU()), nil
	})
	m.AddInstanceMethod("activeProcessorCount", "Q16@0:8", func(any, []any) (any, error) {
		return uint64(runtime.GOMAXPROCS(0)), nil
	})
	m.AddInstanceMethod("physicalMemory", "Q16@0:8", func(any, []any) (any, error) {
		return physicalMemory(), nil
	})
	m.AddInstanceMethod("systemUptime", "d16@0:8", func(any, []any) (any, error) {
		return systemUptime(), nil
	})
	m.AddInstanceMethod("arguments", "@16@0:8", func(self any, _ []any) (any, error) {
		pi := self.(*ProcessInfo)
		pi.mu.RLock()
		defer pi.mu.RUnlock()
		out := make([]any, len(pi.arguments))
		for i, a := range pi.arguments {
			out[i] = a
		}
		return out, nil
	})
	m.AddInstanceMethod("environment", "@16@0:8", func(self any, _ []any) (any, error) {
		pi := self.(*ProcessInfo)
		pi.mu.RLock()
		defer pi.mu.RUnlock()
		out := make(map[string]any, len(pi.environment))
		for k, v := range pi.environment {
			out[k] = v
		}
		return out, nil
	})
	m.AddInstanceMethod("processName", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*ProcessInfo).Name(), nil
	})
	m.AddInstanceMethod("setProcessName:", "v24@0:8@16", func(self any, args []any) (any, error) {
		self.(*ProcessInfo).SetName(stringArg(args[0]))
		return nil, nil
	})
	m.AddInstanceMethod("hostName", "@16@0:8", func(any, []any) (any, error) {
		host, err := os.Hostname()
		if err != nil {
			return "", nil
		}
		return host, nil
	})
	m.AddInstanceMethod("operatingSystemVersion", typemap.OperatingSystemVersionEncoding+"16@0:8", func(self any, _ []any) (any, error) {
		return self.(*ProcessInfo).OperatingSystemVersion(), nil
	})
	m.AddInstanceMethod("operatingSystemVersionString", "@16@0:8", func(self any, _ []any) (any, error) {
		v := self.(*ProcessInfo).OperatingSystemVersion()
		return fmt.Sprintf("Version %d.%d.%d (%s %s)", v.Major, v.Minor, v.Patch, runtime.GOOS, kernelRelease()), nil
	})
	m.AddInstanceMethod("isOperatingSystemAtLeastVersion:", "B40@0:8"+typemap.OperatingSystemVersionEncoding+"16", func(self any, args []any) (any, error) {
		b, ok := args[0].(*typeenc.Boxed)
		if !ok {
			raise(InvalidArgumentException, "expected an operating system version, got %T", args[0])
		}
		want, ok := typeenc.Unbox[typemap.OperatingSystemVersion](b)
		if !ok {
			raise(InvalidArgumentException, "expected an operating system version, got %s", b.Encoding())
		}
		return self.(*ProcessInfo).OperatingSystemVersion().AtLeast(want), nil
	})

	f.Space.RegisterGoType("NSProcessInfo", "NSObject", reflect.TypeFor[*ProcessInfo](), nil, m)
}
