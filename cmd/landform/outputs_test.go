package cmd

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/config"
	"github.com/landform/landform/reconciler"
	"github.com/landform/landform/resource"
	"github.com/landform/landform/storage"
	"github.com/landform/landform/storage/kvbackend"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
)

type testThing struct {
	Name string `func:"input" hcl:"name"`
	ID   string `func:"output"`
}

func (t *testThing) Type() string { return "test_thing" }

func (t *testThing) Create(context.Context, *resource.CreateRequest) error { return nil }
func (t *testThing) Update(context.Context, *resource.UpdateRequest) error { return nil }
func (t *testThing) Delete(context.Context, *resource.DeleteRequest) error { return nil }

func loadOutputs(t *testing.T, src string) []config.Output {
	t.Helper()
	dir, err := ioutil.TempDir("", "landform-cmd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	if err := ioutil.WriteFile(filepath.Join(dir, "main.hcl"), []byte(src), 0600); err != nil {
		t.Fatal(err)
	}
	l := &config.Loader{}
	cfg, diags := l.Load(dir)
	if diags.HasErrors() {
		t.Fatalf("Load() diagnostics: %v", diags)
	}
	return cfg.Outputs
}

func outputsEnv() (*reconciler.Reconciler, *storage.KV, *hcl.EvalContext) {
	kv := &storage.KV{Backend: &kvbackend.Memory{}}
	rec := &reconciler.Reconciler{
		State:    kv,
		Registry: resource.RegistryFromDefinitions(&testThing{}),
		Logger:   zap.NewNop(),
	}
	base := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var":    cty.EmptyObjectVal,
			"secret": cty.EmptyObjectVal,
		},
	}
	return rec, kv, base
}

const thingOutputSrc = `
project "demo" {}

output "thing_id" {
  value = test_thing.a.id
}
`

func TestWriteOutputs(t *testing.T) {
	rec, kv, base := outputsEnv()

	data, err := resource.MarshalDefinition(&testThing{Name: "a", ID: "t-123"})
	if err != nil {
		t.Fatal(err)
	}
	err = kv.PutRecord(context.Background(), "demo", storage.Record{
		Address: "test_thing.a",
		Type:    "test_thing",
		Def:     data,
	})
	if err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	writeOutputs(context.Background(), rec, "demo", loadOutputs(t, thingOutputSrc), base, &out, &errOut)

	if want := "\nthing_id = t-123\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q, want empty", errOut.String())
	}
}

func TestWriteOutputs_unavailable(t *testing.T) {
	rec, _, base := outputsEnv()

	var out, errOut bytes.Buffer
	writeOutputs(context.Background(), rec, "demo", loadOutputs(t, thingOutputSrc), base, &out, &errOut)

	if out.Len() != 0 {
		t.Errorf("output = %q, want empty", out.String())
	}
	if !strings.Contains(errOut.String(), "test_thing.a") {
		t.Errorf("stderr = %q, want the unrealized instance named", errOut.String())
	}
}
