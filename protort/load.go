package protort

import (
	"fmt"
	"os"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ParseProtoFiles compiles .proto sources found under importPaths.
func ParseProtoFiles(importPaths []string, files ...string) ([]*desc.FileDescriptor, error) {
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parsing proto files: %w", err)
	}
	return fds, nil
}

// LoadDescriptorSet reads a serialized FileDescriptorSet, as written by
// protoc --descriptor_set_out with --include_imports.
func LoadDescriptorSet(path string) ([]*desc.FileDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor set: %w", err)
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decoding descriptor set %s: %w", path, err)
	}
	byName, err := desc.CreateFileDescriptorsFromSet(&set)
	if err != nil {
		return nil, fmt.Errorf("linking descriptor set %s: %w", path, err)
	}
	fds := make([]*desc.FileDescriptor, 0, len(set.GetFile()))
	for _, f := range set.GetFile() {
		if fd, ok := byName[f.GetName()]; ok {
			fds = append(fds, fd)
		}
	}
	return fds, nil
}
