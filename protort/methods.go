package protort

import (
	"fmt"

	"github.com/jhump/protoreflect/dynamic"
)

func (r *Runtime) addClassMethod(selector, types string, impl func(c *MessageClass, args []any) (any, error)) {
	r.classMethods[selector] = mustMethod(selector, types, func(self any, args []any) (any, error) {
		return impl(self.(*MessageClass), args)
	})
}

func (r *Runtime) addInstanceMethod(selector, types string, impl func(msg *dynamic.Message, args []any) (any, error)) {
	r.instanceMethods[selector] = mustMethod(selector, types, func(self any, args []any) (any, error) {
		return impl(self.(*dynamic.Message), args)
	})
}

func (r *Runtime) installClassMethods() {
	empty := func(c *MessageClass, _ []any) (any, error) { return c.New(), nil }
	r.addClassMethod("new", "@16@0:8", empty)
	r.addClassMethod("alloc", "@16@0:8", empty)
	r.addClassMethod("init", "@16@0:8", empty)

	r.addClassMethod("className", "@16@0:8", func(c *MessageClass, _ []any) (any, error) {
		return c.ClassName(), nil
	})
	r.addClassMethod("fieldNames", "@16@0:8", func(c *MessageClass, _ []any) (any, error) {
		fields := c.desc.GetFields()
		names := make([]any, len(fields))
		for i, fd := range fields {
			names[i] = fd.GetName()
		}
		return names, nil
	})
	r.addClassMethod("messageWithData:", "@24@0:8@16", func(c *MessageClass, args []any) (any, error) {
		data, ok := args[0].([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: messageWithData: expects data, got %T", ErrFieldValue, args[0])
		}
		msg := c.New()
		if err := msg.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.ClassName(), err)
		}
		return msg, nil
	})
	r.addClassMethod("messageWithJSONString:", "@24@0:8@16", func(c *MessageClass, args []any) (any, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: messageWithJSONString: expects a string, got %T", ErrFieldValue, args[0])
		}
		msg := c.New()
		if err := msg.UnmarshalJSON([]byte(s)); err != nil {
			return nil, fmt.Errorf("decoding %s JSON: %w", c.ClassName(), err)
		}
		return msg, nil
	})
	r.addClassMethod("messageWithDictionary:", "@24@0:8@16", func(c *MessageClass, args []any) (any, error) {
		dict, ok := args[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: messageWithDictionary: expects a dictionary, got %T", ErrFieldValue, args[0])
		}
		return MessageFromDictionary(c.desc, dict)
	})
}

func (r *Runtime) installInstanceMethods() {
	r.addInstanceMethod("init", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		return msg, nil
	})
	r.addInstanceMethod("class", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		return r.Register(msg.GetMessageDescriptor()), nil
	})
	r.addInstanceMethod("className", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		return msg.GetMessageDescriptor().GetFullyQualifiedName(), nil
	})
	r.addInstanceMethod("description", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		return msg.String(), nil
	})
	r.addInstanceMethod("data", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		return msg.Marshal()
	})
	r.addInstanceMethod("JSONString", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		b, err := msg.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	})
	r.addInstanceMethod("dictionaryRepresentation", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		return MessageToDictionary(msg), nil
	})
	r.addInstanceMethod("copy", "@16@0:8", func(msg *dynamic.Message, _ []any) (any, error) {
		dup := dynamic.NewMessage(msg.GetMessageDescriptor())
		if err := dup.MergeFrom(msg); err != nil {
			return nil, err
		}
		return dup, nil
	})
	r.addInstanceMethod("hasFieldNamed:", "B24@0:8@16", func(msg *dynamic.Message, args []any) (any, error) {
		name, _ := args[0].(string)
		fd := findField(msg.GetMessageDescriptor(), name)
		return fd != nil && msg.HasField(fd), nil
	})
	r.addInstanceMethod("clearFieldNamed:", "v24@0:8@16", func(msg *dynamic.Message, args []any) (any, error) {
		name, _ := args[0].(string)
		if fd := findField(msg.GetMessageDescriptor(), name); fd != nil {
			msg.ClearField(fd)
		}
		return nil, nil
	})
	r.addInstanceMethod("isEqual:", "B24@0:8@16", func(msg *dynamic.Message, args []any) (any, error) {
		other, ok := args[0].(*dynamic.Message)
		return ok && dynamic.Equal(msg, other), nil
	})
}
