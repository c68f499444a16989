package graph_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/config"
	"github.com/landform/landform/graph"
	"github.com/landform/landform/plan"
	"github.com/landform/landform/resource"
	"github.com/zclconf/go-cty/cty"
)

type noop struct{}

func (noop) Create(context.Context, *resource.CreateRequest) error { return nil }
func (noop) Update(context.Context, *resource.UpdateRequest) error { return nil }
func (noop) Delete(context.Context, *resource.DeleteRequest) error { return nil }

type testVPC struct {
	noop
	CIDR string `func:"input" name:"cidr_block"`
	ID   string `func:"output"`
}

func (testVPC) Type() string { return "aws_vpc" }

type testSubnet struct {
	noop
	VPCID string `func:"input" name:"vpc_id"`
	CIDR  string `func:"input" name:"cidr_block"`
	ID    string `func:"output"`
}

func (testSubnet) Type() string { return "aws_subnet" }

type testRule struct {
	SecurityGroups []string `hcl:"security_groups,optional"`
}

type testSecurityGroup struct {
	noop
	VPCID   string     `func:"input" name:"vpc_id"`
	Ingress []testRule `func:"input" hcl:"ingress,block"`
	ID      string     `func:"output"`
}

func (testSecurityGroup) Type() string { return "aws_security_group" }

type testInstance struct {
	noop
	SubnetID string `func:"input" name:"subnet_id"`
	ID       string `func:"output"`
}

func (testInstance) Type() string { return "aws_instance" }

func testRegistry() *resource.Registry {
	return resource.RegistryFromDefinitions(
		&testVPC{},
		&testSubnet{},
		&testSecurityGroup{},
		&testInstance{},
	)
}

func build(t *testing.T, src string, vars map[string]cty.Value) (*graph.Graph, error) {
	t.Helper()
	dir, err := ioutil.TempDir("", "landform-graph")
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

	if vars == nil {
		vars = map[string]cty.Value{}
	}
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var":    cty.ObjectVal(vars),
			"secret": cty.EmptyObjectVal,
		},
	}
	b := &graph.Builder{Registry: testRegistry()}
	return b.Build(cfg, ctx)
}

func addresses(g *graph.Graph) []string {
	var out []string
	for _, n := range g.List() {
		out = append(out, n.Addr.String())
	}
	return out
}

func TestBuilder_Build(t *testing.T) {
	g, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_subnet" "private" {
  count      = 2
  vpc_id     = aws_vpc.main.id
  cidr_block = var.cidrs[count.index]
}

resource "aws_instance" "app" {
  subnet_id = aws_subnet.private[0].id
}
`, map[string]cty.Value{
		"cidrs": cty.TupleVal([]cty.Value{
			cty.StringVal("10.0.1.0/24"),
			cty.StringVal("10.0.2.0/24"),
		}),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []string{
		"aws_vpc.main",
		"aws_subnet.private[0]",
		"aws_subnet.private[1]",
		"aws_instance.app",
	}
	if diff := cmp.Diff(addresses(g), want); diff != "" {
		t.Errorf("nodes (-got, +want)\n%s", diff)
	}

	if diff := cmp.Diff(g.Get("aws_subnet.private[0]").Deps, []string{"aws_vpc.main"}); diff != "" {
		t.Errorf("aws_subnet.private[0] deps (-got, +want)\n%s", diff)
	}
	if diff := cmp.Diff(g.Get("aws_instance.app").Deps, []string{"aws_subnet.private[0]"}); diff != "" {
		t.Errorf("aws_instance.app deps (-got, +want)\n%s", diff)
	}
	if deps := g.Get("aws_vpc.main").Deps; len(deps) != 0 {
		t.Errorf("aws_vpc.main deps = %v, want none", deps)
	}
}

func TestBuilder_Build_wholeCountedReference(t *testing.T) {
	g, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_subnet" "private" {
  count      = 2
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}

resource "aws_instance" "app" {
  subnet_id = aws_subnet.private.id
}
`, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []string{"aws_subnet.private[0]", "aws_subnet.private[1]"}
	if diff := cmp.Diff(g.Get("aws_instance.app").Deps, want); diff != "" {
		t.Errorf("aws_instance.app deps (-got, +want)\n%s", diff)
	}
}

func TestBuilder_Build_nestedBlockReference(t *testing.T) {
	g, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_security_group" "web" {
  vpc_id = aws_vpc.main.id
}

resource "aws_security_group" "db" {
  vpc_id = aws_vpc.main.id

  ingress {
    security_groups = [aws_security_group.web.id]
  }
}
`, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []string{"aws_security_group.web", "aws_vpc.main"}
	if diff := cmp.Diff(g.Get("aws_security_group.db").Deps, want); diff != "" {
		t.Errorf("aws_security_group.db deps (-got, +want)\n%s", diff)
	}

	dependents := g.Dependents("aws_security_group.web")
	if diff := cmp.Diff(dependents, []string{"aws_security_group.db"}); diff != "" {
		t.Errorf("aws_security_group.web dependents (-got, +want)\n%s", diff)
	}

	p, err := plan.Create(g)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	order := p.Addresses()
	if diff := cmp.Diff(order, []string{
		"aws_vpc.main",
		"aws_security_group.web",
		"aws_security_group.db",
	}); diff != "" {
		t.Errorf("plan order (-got, +want)\n%s", diff)
	}
}

func TestBuilder_Build_countFromVariable(t *testing.T) {
	g, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  count      = var.n
  cidr_block = "10.0.0.0/16"
}
`, map[string]cty.Value{"n": cty.NumberIntVal(3)})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := len(g.List()); got != 3 {
		t.Errorf("got %d nodes, want 3", got)
	}
}

func TestBuilder_Build_danglingReference(t *testing.T) {
	_, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_instance" "app" {
  subnet_id = aws_subnet.nonexistent.id
}
`, nil)
	dangling, ok := err.(graph.DanglingReferenceError)
	if !ok {
		t.Fatalf("Build() error = %v, want DanglingReferenceError", err)
	}
	if dangling.Reference != "aws_subnet.nonexistent" {
		t.Errorf("Reference = %q, want %q", dangling.Reference, "aws_subnet.nonexistent")
	}
}

func TestBuilder_Build_indexOutOfRange(t *testing.T) {
	_, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_subnet" "private" {
  count      = 2
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}

resource "aws_instance" "app" {
  subnet_id = aws_subnet.private[2].id
}
`, nil)
	dangling, ok := err.(graph.DanglingReferenceError)
	if !ok {
		t.Fatalf("Build() error = %v, want DanglingReferenceError", err)
	}
	if dangling.Reference != "aws_subnet.private[2]" {
		t.Errorf("Reference = %q, want %q", dangling.Reference, "aws_subnet.private[2]")
	}
}

func TestBuilder_Build_unknownType(t *testing.T) {
	_, err := build(t, `
project "test" {}

resource "aws_vcp" "main" {
  cidr_block = "10.0.0.0/16"
}
`, nil)
	unknown, ok := err.(graph.UnknownTypeError)
	if !ok {
		t.Fatalf("Build() error = %v, want UnknownTypeError", err)
	}
	if unknown.Suggestion != "aws_vpc" {
		t.Errorf("Suggestion = %q, want %q", unknown.Suggestion, "aws_vpc")
	}
}

func TestBuilder_Build_cycle(t *testing.T) {
	_, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = aws_subnet.private.cidr_block
}

resource "aws_subnet" "private" {
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}
`, nil)
	cycle, ok := err.(graph.CycleError)
	if !ok {
		t.Fatalf("Build() error = %v, want CycleError", err)
	}
	want := []string{"aws_subnet.private", "aws_vpc.main"}
	if diff := cmp.Diff(cycle.Addresses, want); diff != "" {
		t.Errorf("Addresses (-got, +want)\n%s", diff)
	}
}

func TestBuilder_Build_selfReference(t *testing.T) {
	_, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = aws_vpc.main.cidr_block
}
`, nil)
	if _, ok := err.(graph.CycleError); !ok {
		t.Fatalf("Build() error = %v, want CycleError", err)
	}
}

func TestBuilder_Build_countReferencingResource(t *testing.T) {
	_, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_subnet" "private" {
  count      = aws_vpc.main.id
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}
`, nil)
	if err == nil {
		t.Fatal("Build() should fail when count references a resource")
	}
}

func TestGraph_Dependents(t *testing.T) {
	g, err := build(t, `
project "test" {}

resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_subnet" "a" {
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}

resource "aws_subnet" "b" {
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.2.0/24"
}
`, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	got := g.Dependents("aws_vpc.main")
	want := []string{"aws_subnet.a", "aws_subnet.b"}
	if diff := cmp.Diff(got, want, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("Dependents() (-got, +want)\n%s", diff)
	}
}
