package resource_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/landform/landform/resource"
)

func TestRegistry_New(t *testing.T) {
	reg := resource.RegistryFromDefinitions(&testDef{})

	def := reg.New("test_resource")
	if def == nil {
		t.Fatal("New() returned nil for registered type")
	}
	if _, ok := def.(*testDef); !ok {
		t.Errorf("New() returned %T, want *testDef", def)
	}

	if got := reg.New("nonexistent"); got != nil {
		t.Errorf("New() for unknown type = %v, want nil", got)
	}
}

func TestRegistry_Types(t *testing.T) {
	reg := resource.RegistryFromDefinitions(&testDef{})
	want := []string{"test_resource"}
	if diff := cmp.Diff(reg.Types(), want); diff != "" {
		t.Errorf("Types() (-got, +want)\n%s", diff)
	}
}
