package protort

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/chazu/dynamic/objspace"
)

// MessageClass is the class identity of a protobuf message type.
type MessageClass struct {
	desc      *desc.MessageDescriptor
	accessors map[string]*objspace.MethodEntry
}

func newMessageClass(md *desc.MessageDescriptor) *MessageClass {
	c := &MessageClass{desc: md, accessors: make(map[string]*objspace.MethodEntry)}
	for _, fd := range md.GetFields() {
		c.addAccessors(fd)
	}
	return c
}

func (c *MessageClass) ClassName() string                  { return c.desc.GetFullyQualifiedName() }
func (c *MessageClass) String() string                     { return c.desc.GetFullyQualifiedName() }
func (c *MessageClass) Descriptor() *desc.MessageDescriptor { return c.desc }

// New returns an empty message of this class.
func (c *MessageClass) New() *dynamic.Message {
	return dynamic.NewMessage(c.desc)
}

// GetterName returns the getter selector for a field: the lower camel case
// form of its name, so order_id is read with orderId.
func GetterName(fd *desc.FieldDescriptor) string {
	return strcase.ToLowerCamel(fd.GetName())
}

// SetterName returns the setter selector for a field, e.g. setOrderId:.
func SetterName(fd *desc.FieldDescriptor) string {
	return "set" + strcase.ToCamel(fd.GetName()) + ":"
}

// FieldEncoding returns the native type encoding a field travels as.
// Repeated, map, string, bytes and message fields are objects.
func FieldEncoding(fd *desc.FieldDescriptor) string {
	if fd.IsRepeated() {
		return "@"
	}
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return "i"
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return "q"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return "I"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return "Q"
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return "f"
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "d"
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return "B"
	}
	return "@"
}

func (c *MessageClass) addAccessors(fd *desc.FieldDescriptor) {
	enc := FieldEncoding(fd)

	getter := GetterName(fd)
	c.accessors[getter] = mustMethod(getter, enc+"16@0:8", func(self any, _ []any) (any, error) {
		msg := self.(*dynamic.Message)
		// An unset singular message reads as nil rather than an empty message.
		if fd.GetMessageType() != nil && !fd.IsRepeated() && !msg.HasField(fd) {
			return nil, nil
		}
		return fromProto(fd, msg.GetField(fd))
	})

	setter := SetterName(fd)
	c.accessors[setter] = mustMethod(setter, "v24@0:8"+enc+"16", func(self any, args []any) (any, error) {
		msg := self.(*dynamic.Message)
		if args[0] == nil {
			msg.ClearField(fd)
			return nil, nil
		}
		v, err := toProto(fd, args[0])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c.desc.GetName(), fd.GetName(), err)
		}
		if err := msg.TrySetField(fd, v); err != nil {
			return nil, fmt.Errorf("setting %s.%s: %w", c.desc.GetName(), fd.GetName(), err)
		}
		return nil, nil
	})
}

// findField resolves a field by proto name, JSON name or getter name.
func findField(md *desc.MessageDescriptor, name string) *desc.FieldDescriptor {
	if fd := md.FindFieldByName(name); fd != nil {
		return fd
	}
	if fd := md.FindFieldByJSONName(name); fd != nil {
		return fd
	}
	return md.FindFieldByName(strcase.ToSnake(name))
}

func mustMethod(selector, types string, impl objspace.MethodFunc) *objspace.MethodEntry {
	m, err := objspace.NewMethodEntry(selector, types, impl)
	if err != nil {
		panic(err)
	}
	return m
}
