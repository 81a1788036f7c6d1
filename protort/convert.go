package protort

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ErrFieldValue reports a value that cannot be stored in a field.
var ErrFieldValue = errors.New("protort: value does not fit field")

// MessageFromDictionary builds a message of type md from a dictionary keyed
// by field name. Keys that name no field are skipped.
func MessageFromDictionary(md *desc.MessageDescriptor, dict map[string]any) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)

	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fd := findField(md, key)
		if fd == nil {
			continue
		}
		val := dict[key]
		if val == nil {
			continue
		}
		protoVal, err := toProto(fd, val)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		if err := msg.TrySetField(fd, protoVal); err != nil {
			return nil, fmt.Errorf("setting field %s: %w", fd.GetName(), err)
		}
	}
	return msg, nil
}

// MessageToDictionary converts the populated fields of msg to a dictionary
// keyed by field name. Nested messages become dictionaries and enum values
// their names.
func MessageToDictionary(msg *dynamic.Message) map[string]any {
	dict := make(map[string]any)
	for _, fd := range msg.GetKnownFields() {
		if !msg.HasField(fd) {
			continue
		}
		dict[fd.GetName()] = plainField(fd, msg.GetField(fd))
	}
	return dict
}

func plainField(fd *desc.FieldDescriptor, val any) any {
	if fd.IsMap() {
		out := make(map[string]any)
		for k, v := range val.(map[any]any) {
			out[fmt.Sprint(k)] = plainElement(fd.GetMapValueType(), v)
		}
		return out
	}
	if fd.IsRepeated() {
		slice := reflect.ValueOf(val)
		items := make([]any, slice.Len())
		for i := range items {
			items[i] = plainElement(fd, slice.Index(i).Interface())
		}
		return items
	}
	return plainElement(fd, val)
}

func plainElement(fd *desc.FieldDescriptor, val any) any {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		if msg, ok := val.(*dynamic.Message); ok {
			return MessageToDictionary(msg)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		num := val.(int32)
		if ev := fd.GetEnumType().FindValueByNumber(num); ev != nil {
			return ev.GetName()
		}
		return num
	}
	return val
}

// fromProto converts a field value read from a message to the value a
// getter answers: lists for repeated fields and string-keyed dictionaries
// for maps.
func fromProto(fd *desc.FieldDescriptor, val any) (any, error) {
	if fd.IsMap() {
		m, ok := val.(map[any]any)
		if !ok {
			return nil, fmt.Errorf("%w: map field %s holds %T", ErrFieldValue, fd.GetName(), val)
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	}
	if fd.IsRepeated() {
		slice := reflect.ValueOf(val)
		if slice.Kind() != reflect.Slice {
			return nil, fmt.Errorf("%w: repeated field %s holds %T", ErrFieldValue, fd.GetName(), val)
		}
		items := make([]any, slice.Len())
		for i := range items {
			items[i] = slice.Index(i).Interface()
		}
		return items, nil
	}
	return val, nil
}

// toProto converts a value handed to a setter to the form TrySetField
// expects for fd.
func toProto(fd *desc.FieldDescriptor, val any) (any, error) {
	if fd.IsMap() {
		return toMapField(fd, val)
	}
	if fd.IsRepeated() {
		items, ok := val.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list, got %T", ErrFieldValue, val)
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := toElement(fd, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}
	return toElement(fd, val)
}

func toMapField(fd *desc.FieldDescriptor, val any) (any, error) {
	dict, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a dictionary, got %T", ErrFieldValue, val)
	}
	keyField, valueField := fd.GetMapKeyType(), fd.GetMapValueType()
	out := make(map[any]any, len(dict))
	for k, v := range dict {
		key, err := keyFromString(keyField, k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		elem, err := toElement(valueField, v)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", k, err)
		}
		out[key] = elem
	}
	return out, nil
}

func keyFromString(fd *desc.FieldDescriptor, s string) (any, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return s, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		return b, nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return toElement(fd, u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return toElement(fd, n)
}

func toElement(fd *desc.FieldDescriptor, val any) (any, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		if n, ok := asInt(val); ok {
			return int32(n), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		if n, ok := asInt(val); ok {
			return n, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if n, ok := asInt(val); ok && n >= 0 {
			return uint32(n), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if u, ok := val.(uint64); ok {
			return u, nil
		}
		if n, ok := asInt(val); ok && n >= 0 {
			return uint64(n), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		if f, ok := asFloat(val); ok {
			return float32(f), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		if f, ok := asFloat(val); ok {
			return f, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if b, ok := val.(bool); ok {
			return b, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if s, ok := val.(string); ok {
			return s, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		switch v := val.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		md := fd.GetMessageType()
		switch v := val.(type) {
		case *dynamic.Message:
			if v.GetMessageDescriptor().GetFullyQualifiedName() == md.GetFullyQualifiedName() {
				return v, nil
			}
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrFieldValue,
				md.GetFullyQualifiedName(), v.GetMessageDescriptor().GetFullyQualifiedName())
		case map[string]any:
			return MessageFromDictionary(md, v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if n, ok := asInt(val); ok {
			return int32(n), nil
		}
		if name, ok := val.(string); ok {
			if ev := fd.GetEnumType().FindValueByName(name); ev != nil {
				return ev.GetNumber(), nil
			}
			return nil, fmt.Errorf("%w: %s has no value %s", ErrFieldValue, fd.GetEnumType().GetName(), name)
		}
	}
	return nil, fmt.Errorf("%w: cannot convert %T to %v", ErrFieldValue, val, fd.GetType())
}

func asInt(val any) (int64, bool) {
	rv := reflect.ValueOf(val)
	switch {
	case rv.CanInt():
		return rv.Int(), true
	case rv.CanUint():
		return int64(rv.Uint()), true
	}
	return 0, false
}

func asFloat(val any) (float64, bool) {
	rv := reflect.ValueOf(val)
	switch {
	case rv.CanFloat():
		return rv.Float(), true
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	}
	return 0, false
}
