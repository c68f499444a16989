package config

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// LoadSecrets loads sensitive values from the secrets file in dir.
//
// The file contains only top level attributes with literal values:
//
//   db_password = "correct horse battery staple"
//
// The values are referenced in resource config as secret.<name>. If the file
// does not exist, an empty set is returned; a resource referencing a secret
// will then fail with a missing value diagnostic at decode time.
func (l *Loader) LoadSecrets(dir string) (map[string]cty.Value, hcl.Diagnostics) {
	file := filepath.Join(dir, SecretsFile)
	if _, err := os.Stat(file); err != nil {
		return map[string]cty.Value{}, nil
	}

	if l.parser == nil {
		l.parser = hclparse.NewParser()
	}
	f, diags := l.parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, d := f.Body.JustAttributes()
	diags = append(diags, d...)
	if diags.HasErrors() {
		return nil, diags
	}

	secrets := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, d := attr.Expr.Value(nil)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		secrets[name] = val
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return secrets, nil
}
