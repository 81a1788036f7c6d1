package foundation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/dynamic/objspace"
	"github.com/chazu/dynamic/typeenc"
)

// ErrNotArchivable is returned for values the archiver has no encoding for.
var ErrNotArchivable = errors.New("value is not archivable")

// archiveEncMode produces canonical CBOR so equal object graphs archive to
// equal bytes.
var archiveEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("foundation: failed to create CBOR enc mode: %v", err))
	}
	archiveEncMode = em
}

// node is the archived form of one object.
type node struct {
	Kind  string   `cbor:"k"`
	Int   int64    `cbor:"i,omitempty"`
	Uint  uint64   `cbor:"u,omitempty"`
	Float float64  `cbor:"f,omitempty"`
	Str   string   `cbor:"s,omitempty"`
	Bytes []byte   `cbor:"b,omitempty"`
	Keys  []string `cbor:"ks,omitempty"`
	Items []node   `cbor:"a,omitempty"`
}

const (
	kindNil      = "nil"
	kindBool     = "bool"
	kindString   = "string"
	kindData     = "data"
	kindArray    = "array"
	kindMutable  = "mutablearray"
	kindDict     = "dict"
	kindDate     = "date"
	kindUUID     = "uuid"
	kindURL      = "url"
	kindValue    = "value"
	kindInstance = "instance"
)

// Archiver converts object graphs to and from keyed-archive bytes.
// Instances of script-defined classes are restored through the object
// space they were created in.
type Archiver struct {
	space *objspace.ObjectSpace
}

func (f *Foundation) archiver() *Archiver {
	return &Archiver{space: f.Space}
}

// Archive encodes obj.
func (a *Archiver) Archive(obj any) ([]byte, error) {
	n, err := a.encode(obj)
	if err != nil {
		return nil, err
	}
	return archiveEncMode.Marshal(n)
}

// Unarchive decodes bytes produced by Archive.
func (a *Archiver) Unarchive(data []byte) (any, error) {
	var n node
	if err := cbor.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("foundation: unmarshal archive: %w", err)
	}
	return a.decode(n)
}

func (a *Archiver) encode(v any) (node, error) {
	switch x := v.(type) {
	case nil:
		return node{Kind: kindNil}, nil
	case bool:
		n := node{Kind: kindBool}
		if x {
			n.Int = 1
		}
		return n, nil
	case string:
		return node{Kind: kindString, Str: x}, nil
	case []byte:
		return node{Kind: kindData, Bytes: x}, nil
	case []any:
		items, err := a.encodeAll(x)
		return node{Kind: kindArray, Items: items}, err
	case *MutableArray:
		items, err := a.encodeAll(x.Items)
		return node{Kind: kindMutable, Items: items}, err
	case map[string]any:
		keys := sortedKeys(x)
		items, err := a.encodeAll(valuesOf(x, keys))
		return node{Kind: kindDict, Keys: keys, Items: items}, err
	case time.Time:
		return node{Kind: kindDate, Str: x.Format(time.RFC3339Nano)}, nil
	case uuid.UUID:
		return node{Kind: kindUUID, Bytes: x[:]}, nil
	case *url.URL:
		return node{Kind: kindURL, Str: x.String()}, nil
	case *typeenc.Boxed:
		return node{Kind: kindValue, Str: x.Encoding(), Bytes: x.Bytes()}, nil
	case *objspace.Instance:
		vars := make(map[string]any, len(x.Class.InstanceVars))
		for _, name := range x.Class.InstanceVars {
			vars[name] = x.GetVar(name)
		}
		keys := sortedKeys(vars)
		items, err := a.encodeAll(valuesOf(vars, keys))
		return node{Kind: kindInstance, Str: x.Class.Name, Keys: keys, Items: items}, err
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return node{Kind: rv.Kind().String(), Int: rv.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return node{Kind: rv.Kind().String(), Uint: rv.Uint()}, nil
	case reflect.Float32, reflect.Float64:
		return node{Kind: rv.Kind().String(), Float: rv.Float()}, nil
	}
	return node{}, fmt.Errorf("%w: %T", ErrNotArchivable, v)
}

func (a *Archiver) encodeAll(vs []any) ([]node, error) {
	out := make([]node, len(vs))
	for i, v := range vs {
		n, err := a.encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (a *Archiver) decode(n node) (any, error) {
	switch n.Kind {
	case kindNil:
		return nil, nil
	case kindBool:
		return n.Int != 0, nil
	case kindString:
		return n.Str, nil
	case kindData:
		if n.Bytes == nil {
			return []byte{}, nil
		}
		return n.Bytes, nil
	case kindArray:
		return a.decodeAll(n.Items)
	case kindMutable:
		items, err := a.decodeAll(n.Items)
		if err != nil {
			return nil, err
		}
		return &MutableArray{Items: items}, nil
	case kindDict:
		return a.decodeDict(n)
	case kindDate:
		t, err := time.Parse(time.RFC3339Nano, n.Str)
		if err != nil {
			return nil, fmt.Errorf("foundation: archived date: %w", err)
		}
		return t, nil
	case kindUUID:
		id, err := uuid.FromBytes(n.Bytes)
		if err != nil {
			return nil, fmt.Errorf("foundation: archived uuid: %w", err)
		}
		return id, nil
	case kindURL:
		u, err := url.Parse(n.Str)
		if err != nil {
			return nil, fmt.Errorf("foundation: archived url: %w", err)
		}
		return u, nil
	case kindValue:
		d, err := typeenc.Parse(n.Str)
		if err != nil {
			return nil, err
		}
		if uintptr(len(n.Bytes)) != d.Size {
			return nil, fmt.Errorf("foundation: archived %s value has %d bytes", n.Str, len(n.Bytes))
		}
		return typeenc.NewBoxed(d, n.Bytes), nil
	case kindInstance:
		inst, err := a.space.NewInstance(n.Str)
		if err != nil {
			return nil, fmt.Errorf("foundation: archived instance: %w", err)
		}
		vars, err := a.decodeDict(n)
		if err != nil {
			return nil, err
		}
		for k, v := range vars {
			inst.SetVar(k, v)
		}
		return inst, nil
	case "int":
		return int(n.Int), nil
	case "int8":
		return int8(n.Int), nil
	case "int16":
		return int16(n.Int), nil
	case "int32":
		return int32(n.Int), nil
	case "int64":
		return n.Int, nil
	case "uint":
		return uint(n.Uint), nil
	case "uint8":
		return uint8(n.Uint), nil
	case "uint16":
		return uint16(n.Uint), nil
	case "uint32":
		return uint32(n.Uint), nil
	case "uint64":
		return n.Uint, nil
	case "float32":
		return float32(n.Float), nil
	case "float64":
		return n.Float, nil
	}
	return nil, fmt.Errorf("foundation: unknown archive kind %q", n.Kind)
}

func (a *Archiver) decodeAll(ns []node) ([]any, error) {
	out := make([]any, len(ns))
	for i, n := range ns {
		v, err := a.decode(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a *Archiver) decodeDict(n node) (map[string]any, error) {
	if len(n.Keys) != len(n.Items) {
		return nil, fmt.Errorf("foundation: archive has %d keys for %d values", len(n.Keys), len(n.Items))
	}
	values, err := a.decodeAll(n.Items)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(n.Keys))
	for i, k := range n.Keys {
		out[k] = values[i]
	}
	return out, nil
}

func valuesOf(m map[string]any, keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

func installArchiver(f *Foundation) {
	a := f.archiver()

	archiver := f.Space.NewMethodTable()
	archiver.AddClassMethod("archivedDataWithRootObject:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		data, err := a.Archive(args[0])
		if err != nil {
			raise(InvalidArgumentException, "%v", err)
		}
		return data, nil
	})
	f.Space.RegisterClass("NSKeyedArchiver", "NSObject", nil, archiver)

	unarchiver := f.Space.NewMethodTable()
	unarchiver.AddClassMethod("unarchiveObjectWithData:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		obj, err := a.Unarchive(dataArg(args[0]))
		if err != nil {
			return nil, nil
		}
		return obj, nil
	})
	f.Space.RegisterClass("NSKeyedUnarchiver", "NSObject", nil, unarchiver)
}

