package graph

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl2/hcl"
)

// A CycleError is returned when the reference graph contains a cycle. The
// engine cannot order the cycle members so the whole run is aborted before
// any provider call is made.
type CycleError struct {
	// Addresses of the resources that participate in the cycle.
	Addresses []string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between resources: %s", strings.Join(e.Addresses, ", "))
}

// A DanglingReferenceError is returned when an attribute references a
// resource that does not exist, or an ordinal that is out of range for a
// counted resource.
type DanglingReferenceError struct {
	Reference  string    // The reference as written, such as aws_vpc.mian.
	Subject    hcl.Range // Where the reference was written.
	Suggestion string    // Optional close match.
}

func (e DanglingReferenceError) Error() string {
	msg := fmt.Sprintf("reference to nonexistent resource %s at %s", e.Reference, e.Subject)
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %s?", e.Suggestion)
	}
	return msg
}

// An UnknownTypeError is returned when a resource block declares a type that
// has not been registered.
type UnknownTypeError struct {
	Type       string
	Subject    hcl.Range
	Suggestion string
}

func (e UnknownTypeError) Error() string {
	msg := fmt.Sprintf("unsupported resource type %q at %s", e.Type, e.Subject)
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}
