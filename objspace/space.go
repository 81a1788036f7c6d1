// Package objspace is an in-memory class and object space that implements
// the invoke.Runtime contract. Classes carry method tables with native type
// signatures; Go types can be bound to classes so plain Go values act as
// receivers.
package objspace

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typeenc"
)

// ObjectSpace manages classes and the handle table for objects that are
// travelling through argument and return slots.
type ObjectSpace struct {
	*typeenc.Handles

	selectors *SelectorTable
	classes   map[string]*Class
	byType    map[reflect.Type]*Class
	root      *Class
	classMu   sync.RWMutex
}

var _ invoke.Runtime = (*ObjectSpace)(nil)

// New creates an empty object space.
func New() *ObjectSpace {
	return &ObjectSpace{
		Handles:   typeenc.NewHandles(),
		selectors: NewSelectorTable(),
		classes:   make(map[string]*Class),
		byType:    make(map[reflect.Type]*Class),
	}
}

// Selectors returns the selector table shared by this space's method tables.
func (os *ObjectSpace) Selectors() *SelectorTable {
	return os.selectors
}

// NewMethodTable creates a method table interning into this space.
func (os *ObjectSpace) NewMethodTable() *MethodTable {
	return NewMethodTable(os.selectors)
}

// RegisterClass registers a class. When the superclass is registered its
// instance variables are inherited. The first class registered without a
// superclass becomes the root class used for unbound Go values.
func (os *ObjectSpace) RegisterClass(name, superclass string, instanceVars []string, methods *MethodTable) *Class {
	if methods == nil {
		methods = os.NewMethodTable()
	}

	os.classMu.Lock()
	defer os.classMu.Unlock()

	class := &Class{
		Name:         name,
		Superclass:   superclass,
		InstanceVars: instanceVars,
		Methods:      methods,
	}
	if superclass != "" {
		if super, ok := os.classes[superclass]; ok {
			class.SuperclassP = super
			inherited := make([]string, 0, len(super.InstanceVars)+len(instanceVars))
			inherited = append(inherited, super.InstanceVars...)
			inherited = append(inherited, instanceVars...)
			class.InstanceVars = inherited
		}
	} else if os.root == nil {
		os.root = class
	}
	class.Alloc = func() any { return os.newInstance(class) }

	os.classes[name] = class
	return class
}

// RegisterGoType registers a class whose receivers are values of goType.
// alloc creates the zero receiver used by alloc and new; it may be nil for
// classes that are only ever instantiated by class methods.
func (os *ObjectSpace) RegisterGoType(name, superclass string, goType reflect.Type, alloc func() any, methods *MethodTable) *Class {
	class := os.RegisterClass(name, superclass, nil, methods)
	os.classMu.Lock()
	class.Alloc = alloc
	os.byType[goType] = class
	os.classMu.Unlock()
	return class
}

// Bind maps an additional Go type to an already registered class.
func (os *ObjectSpace) Bind(goType reflect.Type, className string) bool {
	os.classMu.Lock()
	defer os.classMu.Unlock()
	class, ok := os.classes[className]
	if !ok {
		return false
	}
	os.byType[goType] = class
	return true
}

// GetClass retrieves a registered class, or nil.
func (os *ObjectSpace) GetClass(name string) *Class {
	os.classMu.RLock()
	defer os.classMu.RUnlock()
	return os.classes[name]
}

// LookupClass resolves a class name for the invocation layer.
func (os *ObjectSpace) LookupClass(name string) (invoke.Class, bool) {
	class := os.GetClass(name)
	if class == nil {
		return nil, false
	}
	return class, true
}

// ClassOf returns the class of a receiver. Classes are their own
// receivers for class methods and report themselves. Go values fall back
// to the root class when their type is unbound.
func (os *ObjectSpace) ClassOf(obj any) *Class {
	switch v := obj.(type) {
	case nil:
		return nil
	case *Class:
		return v
	case *Instance:
		return v.Class
	}
	os.classMu.RLock()
	defer os.classMu.RUnlock()
	if class, ok := os.byType[reflect.TypeOf(obj)]; ok {
		return class
	}
	return os.root
}

// LookupMethod finds a method, walking up the class hierarchy.
func (os *ObjectSpace) LookupMethod(class *Class, selector string, isClassMethod bool) *MethodEntry {
	os.classMu.RLock()
	defer os.classMu.RUnlock()

	for ; class != nil; class = class.SuperclassP {
		var method *MethodEntry
		if isClassMethod {
			method = class.Methods.LookupClassMethod(selector)
		} else {
			method = class.Methods.LookupInstanceMethod(selector)
		}
		if method != nil {
			return method
		}
	}
	return nil
}

// AddInstanceMethod adds an instance method to a registered class.
func (os *ObjectSpace) AddInstanceMethod(className, selector, types string, impl MethodFunc) error {
	entry, err := NewMethodEntry(selector, types, impl)
	if err != nil {
		return err
	}
	os.classMu.Lock()
	defer os.classMu.Unlock()
	class, ok := os.classes[className]
	if !ok {
		return fmt.Errorf("%w: class %s", invoke.ErrUnresolvedSymbol, className)
	}
	class.Methods.InstanceMethods[class.Methods.selectors.Intern(selector)] = entry
	return nil
}

// ClassNames returns all registered class names, sorted.
func (os *ObjectSpace) ClassNames() []string {
	os.classMu.RLock()
	defer os.classMu.RUnlock()
	names := make([]string, 0, len(os.classes))
	for name := range os.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassCount returns the number of classes registered.
func (os *ObjectSpace) ClassCount() int {
	os.classMu.RLock()
	defer os.classMu.RUnlock()
	return len(os.classes)
}
