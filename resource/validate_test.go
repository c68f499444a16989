package resource_test

import (
	"context"
	"strings"
	"testing"

	"github.com/landform/landform/resource"
)

type testFirewallRule struct {
	Protocol string   `json:"protocol"`
	Blocks   []string `json:"cidr_blocks" validate:"dive,cidr"`
}

type testFirewallDef struct {
	Name  string             `func:"input"`
	Rules []testFirewallRule `func:"input" name:"rule"`

	ID string `func:"output"`
}

func (d *testFirewallDef) Type() string { return "test_firewall" }

func (d *testFirewallDef) Create(context.Context, *resource.CreateRequest) error { return nil }
func (d *testFirewallDef) Update(context.Context, *resource.UpdateRequest) error { return nil }
func (d *testFirewallDef) Delete(context.Context, *resource.DeleteRequest) error { return nil }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     resource.Definition
		wantErr string // substring, empty for ok
	}{
		{"Valid", &testDef{Name: "web", CIDR: "10.0.0.0/16"}, ""},
		{"InvalidCIDR", &testDef{Name: "web", CIDR: "not-a-cidr"}, "cidr_block"},
		{"EmptyOptional", &testDef{Name: "web"}, "cidr_block"},
		{"NoBlocks", &testFirewallDef{Name: "fw"}, ""},
		{"ValidBlock", &testFirewallDef{Name: "fw", Rules: []testFirewallRule{
			{Protocol: "tcp", Blocks: []string{"10.0.0.0/24"}},
		}}, ""},
		{"InvalidNestedCIDR", &testFirewallDef{Name: "fw", Rules: []testFirewallRule{
			{Protocol: "tcp", Blocks: []string{"10.0.0.0/24"}},
			{Protocol: "tcp", Blocks: []string{"not-a-cidr"}},
		}}, "rule[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resource.Validate(tt.def)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() should return an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}
