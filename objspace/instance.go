package objspace

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Class is a registered class.
type Class struct {
	Name         string
	Superclass   string
	SuperclassP  *Class
	InstanceVars []string
	Methods      *MethodTable

	// Alloc creates an uninitialised receiver for this class. Classes
	// backed by a Go type set it; others allocate an *Instance.
	Alloc func() any
}

// ClassName returns the class name.
func (c *Class) ClassName() string { return c.Name }

func (c *Class) String() string { return c.Name }

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for k := c; k != nil; k = k.SuperclassP {
		if k == other {
			return true
		}
	}
	return false
}

// Instance is an object with named instance variables.
type Instance struct {
	ID        string
	Class     *Class
	Vars      map[string]any
	CreatedAt time.Time
	mu        sync.RWMutex
}

// NewInstance creates a new instance of a registered class.
func (os *ObjectSpace) NewInstance(className string) (*Instance, error) {
	class := os.GetClass(className)
	if class == nil {
		return nil, fmt.Errorf("unknown class: %s", className)
	}
	return os.newInstance(class), nil
}

func (os *ObjectSpace) newInstance(class *Class) *Instance {
	inst := &Instance{
		ID:        GenerateID(class.Name),
		Class:     class,
		Vars:      make(map[string]any, len(class.InstanceVars)),
		CreatedAt: time.Now(),
	}
	for _, name := range class.InstanceVars {
		inst.Vars[name] = nil
	}
	return inst
}

// GetVar gets an instance variable value.
func (inst *Instance) GetVar(name string) any {
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return inst.Vars[name]
}

// SetVar sets an instance variable value.
func (inst *Instance) SetVar(name string, v any) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.Vars[name] = v
}

func (inst *Instance) String() string {
	return fmt.Sprintf("<%s %s>", inst.Class.Name, inst.ID)
}

// GenerateID creates a new unique instance ID for the given class name.
func GenerateID(className string) string {
	return strings.ToLower(className) + "_" + uuid.New().String()
}
