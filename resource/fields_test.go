package resource_test

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/landform/landform/resource"
)

func TestFields(t *testing.T) {
	ff := resource.Fields(reflect.TypeOf(&testDef{}))

	gotNames := ff.Names()
	wantNames := []string{"cidr_block", "id", "name", "password", "tags"}
	if diff := cmp.Diff(gotNames, wantNames); diff != "" {
		t.Errorf("Names() (-got, +want)\n%s", diff)
	}

	if !ff["cidr_block"].ForceNew() {
		t.Error("cidr_block should be forcenew")
	}
	if ff["name"].ForceNew() {
		t.Error("name should not be forcenew")
	}
	if !ff["password"].Secret() {
		t.Error("password should be secret")
	}
	if got, want := ff["cidr_block"].Tags["validate"], "cidr"; got != want {
		t.Errorf("validate tag = %q, want %q", got, want)
	}
}

func TestFields_directions(t *testing.T) {
	ff := resource.Fields(reflect.TypeOf(&testDef{}))

	inputs := ff.Inputs().Names()
	wantInputs := []string{"cidr_block", "name", "password", "tags"}
	if diff := cmp.Diff(inputs, wantInputs); diff != "" {
		t.Errorf("Inputs() (-got, +want)\n%s", diff)
	}

	outputs := ff.Outputs().Names()
	wantOutputs := []string{"id"}
	if diff := cmp.Diff(outputs, wantOutputs); diff != "" {
		t.Errorf("Outputs() (-got, +want)\n%s", diff)
	}
}

func TestFields_nameDerivation(t *testing.T) {
	type def struct {
		SimpleName   string `func:"input"`
		HTTPEndpoint string `func:"input"`
		Override     string `func:"input" name:"custom"`
	}
	ff := resource.Fields(reflect.TypeOf(def{}))
	want := []string{"custom", "http_endpoint", "simple_name"}
	if diff := cmp.Diff(ff.Names(), want); diff != "" {
		t.Errorf("Names() (-got, +want)\n%s", diff)
	}
}
