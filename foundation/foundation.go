// Package foundation installs a Foundation-style class library into an
// object space: strings, numbers, collections, dates and formatters,
// UUIDs, exceptions, URLs, progress reporting, process information,
// keyed archiving and user defaults.
//
// Go values stand in for the usual Foundation objects. A string is an
// NSString, numeric kinds and bool are NSNumbers, []any is an NSArray,
// map[string]any is an NSDictionary, []byte is NSData, time.Time is an
// NSDate and *typeenc.Boxed is an NSValue.
package foundation

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/dynamic/objspace"
)

// Foundation is an installed class library.
type Foundation struct {
	Space *objspace.ObjectSpace

	opts     options
	process  *ProcessInfo
	defaults *UserDefaults
}

type options struct {
	location    *time.Location
	processName string
	arguments   []string
	environment map[string]string
	store       Store
}

// Option configures Install.
type Option func(*options)

// WithTimeZone sets the time zone new date formatters start in. The
// default is UTC.
func WithTimeZone(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithProcessName overrides the process name reported by NSProcessInfo.
func WithProcessName(name string) Option {
	return func(o *options) { o.processName = name }
}

// WithArguments overrides the arguments reported by NSProcessInfo.
func WithArguments(args []string) Option {
	return func(o *options) { o.arguments = args }
}

// WithEnvironment overrides the environment reported by NSProcessInfo.
func WithEnvironment(env map[string]string) Option {
	return func(o *options) { o.environment = env }
}

// WithDefaultsStore sets the backing store of standardUserDefaults. The
// default keeps values in memory.
func WithDefaultsStore(s Store) Option {
	return func(o *options) { o.store = s }
}

// New creates an object space with the class library installed.
func New(opts ...Option) *Foundation {
	return Install(objspace.New(), opts...)
}

// Install registers every class into space. NSObject must be the first
// root class so that unbound Go values answer its methods.
func Install(space *objspace.ObjectSpace, opts ...Option) *Foundation {
	o := options{
		location:    time.UTC,
		processName: filepath.Base(os.Args[0]),
		arguments:   os.Args,
		environment: environMap(os.Environ()),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = NewMemoryStore()
	}

	f := &Foundation{Space: space, opts: o}
	f.process = newProcessInfo(o.processName, o.arguments, o.environment)
	f.defaults = &UserDefaults{store: o.store, archiver: f.archiver()}

	installObject(f)
	installString(f)
	installNumber(f)
	installCollections(f)
	installData(f)
	installValue(f)
	installDate(f)
	installDateFormatter(f)
	installUUID(f)
	installException(f)
	installURL(f)
	installProgress(f)
	installProcessInfo(f)
	installArchiver(f)
	installDefaults(f)
	return f
}

// Close releases the defaults store.
func (f *Foundation) Close() error {
	return f.opts.store.Close()
}

// Defaults returns the shared user defaults.
func (f *Foundation) Defaults() *UserDefaults {
	return f.defaults
}

// ProcessInfo returns the shared process information object.
func (f *Foundation) ProcessInfo() *ProcessInfo {
	return f.process
}
