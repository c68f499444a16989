package resource_test

import (
	"testing"

	"github.com/landform/landform/resource"
)

func TestHash_deterministic(t *testing.T) {
	a := &testDef{Name: "web", CIDR: "10.0.0.0/16", Tags: map[string]string{"Name": "web", "Env": "test"}}
	b := &testDef{Name: "web", CIDR: "10.0.0.0/16", Tags: map[string]string{"Env": "test", "Name": "web"}}

	if resource.Hash(a) != resource.Hash(b) {
		t.Error("Hash should not depend on map iteration order")
	}
}

func TestHash_inputChange(t *testing.T) {
	a := &testDef{Name: "web", CIDR: "10.0.0.0/16"}
	b := &testDef{Name: "web", CIDR: "10.1.0.0/16"}

	if resource.Hash(a) == resource.Hash(b) {
		t.Error("Hash should change when an input changes")
	}
}

func TestHash_outputIgnored(t *testing.T) {
	a := &testDef{Name: "web"}
	b := &testDef{Name: "web", ID: "vpc-123"}

	if resource.Hash(a) != resource.Hash(b) {
		t.Error("Hash should not include outputs")
	}
}
