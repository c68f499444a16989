package resource

import "context"

// A Definition describes a resource.
//
// All resources must implement this interface on a pointer receiver on a
// struct. Inputs and outputs are declared by `func:"input"` and
// `func:"output"` struct tags, see Fields().
type Definition interface {
	// Type returns the type name for the resource.
	//
	// The name is used for matching the resource to the resource
	// configuration provided by the user.
	Type() string

	Create(ctx context.Context, req *CreateRequest) error
	Update(ctx context.Context, req *UpdateRequest) error
	Delete(ctx context.Context, req *DeleteRequest) error
}
