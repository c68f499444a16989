package resource_test

import (
	"context"
	"testing"

	"github.com/landform/landform/resource"
)

// testDef is a fake definition used throughout the package tests.
type testDef struct {
	Name     string            `func:"input"`
	CIDR     string            `func:"input,forcenew" name:"cidr_block" validate:"cidr"`
	Password string            `func:"input,secret"`
	Tags     map[string]string `func:"input"`

	ID string `func:"output"`
}

func (d *testDef) Type() string                                           { return "test_resource" }
func (d *testDef) Create(ctx context.Context, r *resource.CreateRequest) error { return nil }
func (d *testDef) Update(ctx context.Context, r *resource.UpdateRequest) error { return nil }
func (d *testDef) Delete(ctx context.Context, r *resource.DeleteRequest) error { return nil }

func TestAddress_String(t *testing.T) {
	tests := []struct {
		name string
		addr resource.Address
		want string
	}{
		{"NoCount", resource.Address{Type: "aws_vpc", Name: "main", Index: -1}, "aws_vpc.main"},
		{"Counted", resource.Address{Type: "aws_subnet", Name: "private", Index: 1}, "aws_subnet.private[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
