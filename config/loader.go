package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclparse"
	"golang.org/x/crypto/ssh/terminal"
)

// SecretsFile is the name of the file that carries sensitive values. It is
// never loaded as part of the regular configuration.
const SecretsFile = "secrets.hcl"

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "project", LabelNames: []string{"name"}},
		{Type: "resource", LabelNames: []string{"type", "name"}},
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

var countSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "count"},
	},
}

var variableSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "default"},
	},
}

var outputSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "value", Required: true},
	},
}

// A Loader loads configuration files from .hcl files on disk.
//
// The zero value is ready to load files.
type Loader struct {
	parser *hclparse.Parser
}

// WriteDiagnostics writes diagnostics as a human readable string to w. It
// should only be used for diagnostics that originate from files loaded by
// Loader.
//
// If a TTY is attached, the output will be colorized and wrap at the terminal
// width. Otherwise, wrap will occur at 78 characters and output won't contain
// ANSI escape characters.
func (l *Loader) WriteDiagnostics(w io.Writer, diags hcl.Diagnostics) {
	var files map[string]*hcl.File
	if l.parser != nil {
		files = l.parser.Files()
	}
	cols, _, err := terminal.GetSize(0)
	if err != nil {
		cols = 78
	}
	color := terminal.IsTerminal(0)
	wr := hcl.NewDiagnosticTextWriter(w, files, uint(cols), color)
	if err := wr.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, err)
	}
}

// Load loads all the config files from the given directory.
//
// Files are processed in lexicographical order so declaration order, and with
// it the plan order for otherwise unordered resources, is deterministic. The
// secrets file is excluded; it is loaded separately with LoadSecrets.
func (l *Loader) Load(dir string) (*Config, hcl.Diagnostics) {
	if l.parser == nil {
		l.parser = hclparse.NewParser()
	}

	names, err := configFiles(dir)
	if err != nil {
		return nil, hcl.Diagnostics{{Severity: hcl.DiagError, Summary: err.Error()}}
	}
	if len(names) == 0 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "No configuration files",
			Detail:   fmt.Sprintf("The directory %s contains no .hcl files.", dir),
		}}
	}

	cfg := &Config{}
	var diags hcl.Diagnostics
	for _, name := range names {
		f, d := l.parser.ParseHCLFile(name)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		diags = append(diags, l.appendFile(cfg, f)...)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	if cfg.Project.Name == "" {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Project not set",
			Detail:   "A project block is required:\n\n  project \"name\" {}",
		})
		return nil, diags
	}

	return cfg, diags
}

func configFiles(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if filepath.Ext(name) != ".hcl" || name == SecretsFile {
			continue
		}
		names = append(names, filepath.Join(dir, name))
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) appendFile(cfg *Config, f *hcl.File) hcl.Diagnostics {
	content, diags := f.Body.Content(rootSchema)
	for _, block := range content.Blocks {
		switch block.Type {
		case "project":
			if cfg.Project.Name != "" {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate project block",
					Detail:   fmt.Sprintf("The project was already declared at %s.", cfg.Project.DeclRange),
					Subject:  &block.DefRange,
				})
				continue
			}
			cfg.Project = Project{Name: block.Labels[0], DeclRange: block.DefRange}
		case "resource":
			decl, d := decodeResource(block)
			diags = append(diags, d...)
			if d.HasErrors() {
				continue
			}
			for _, ex := range cfg.Resources {
				if ex.Type == decl.Type && ex.Name == decl.Name {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Duplicate resource",
						Detail:   fmt.Sprintf("A %s resource named %q was already declared at %s.", decl.Type, decl.Name, ex.DeclRange),
						Subject:  &block.DefRange,
					})
				}
			}
			cfg.Resources = append(cfg.Resources, decl)
		case "variable":
			v, d := decodeVariable(block)
			diags = append(diags, d...)
			if d.HasErrors() {
				continue
			}
			cfg.Variables = append(cfg.Variables, v)
		case "output":
			out, d := decodeOutput(block)
			diags = append(diags, d...)
			if d.HasErrors() {
				continue
			}
			cfg.Outputs = append(cfg.Outputs, out)
		}
	}
	return diags
}

func decodeResource(block *hcl.Block) (Declaration, hcl.Diagnostics) {
	decl := Declaration{
		Type:      block.Labels[0],
		Name:      block.Labels[1],
		DeclRange: block.DefRange,
	}
	content, body, diags := block.Body.PartialContent(countSchema)
	if diags.HasErrors() {
		return decl, diags
	}
	if attr, ok := content.Attributes["count"]; ok {
		decl.Count = attr.Expr
	}
	decl.Config = body
	return decl, diags
}

func decodeVariable(block *hcl.Block) (Variable, hcl.Diagnostics) {
	v := Variable{Name: block.Labels[0], DeclRange: block.DefRange}
	content, diags := block.Body.Content(variableSchema)
	if diags.HasErrors() {
		return v, diags
	}
	if attr, ok := content.Attributes["default"]; ok {
		val, d := attr.Expr.Value(nil)
		diags = append(diags, d...)
		v.Default = val
	}
	return v, diags
}

func decodeOutput(block *hcl.Block) (Output, hcl.Diagnostics) {
	out := Output{Name: block.Labels[0], DeclRange: block.DefRange}
	content, diags := block.Body.Content(outputSchema)
	if diags.HasErrors() {
		return out, diags
	}
	out.Value = content.Attributes["value"].Expr
	return out, diags
}
