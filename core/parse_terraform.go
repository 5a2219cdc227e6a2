package core

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"polyscan/schema"
)

// Block layout of terraform source files, as far as extraction cares.
// Everything else in the file is left to PartialContent's remainder.
var terraformFileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "terraform"},
		{Type: "module", LabelNames: []string{"name"}},
		{Type: "provider", LabelNames: []string{"name"}},
	},
}

var terraformBlockSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "required_providers"},
	},
}

var sourceVersionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "source"},
		{Name: "version"},
	},
}

// parseTerraformSource extracts provider requirements and module calls from
// one .tf or .tf.json file. Only statically-known expressions are evaluated;
// anything referencing variables yields an empty constraint.
func parseTerraformSource(relPath string, data []byte) ([]schema.Dependency, error) {
	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.HasSuffix(strings.ToLower(relPath), ".json") {
		file, diags = parser.ParseJSON(data, relPath)
	} else {
		file, diags = parser.ParseHCL(data, relPath)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid HCL: %s", diags.Error())
	}

	content, _, _ := file.Body.PartialContent(terraformFileSchema)

	var deps []schema.Dependency
	for _, block := range content.Blocks {
		switch block.Type {
		case "terraform":
			deps = append(deps, parseRequiredProviders(relPath, block.Body)...)
		case "module":
			deps = append(deps, parseModuleBlock(relPath, block)...)
		case "provider":
			// Legacy in-provider version pins, still seen in older configs.
			attrs, _, _ := block.Body.PartialContent(sourceVersionSchema)
			if version := stringAttr(attrs.Attributes, "version"); version != "" {
				deps = append(deps, schema.Dependency{
					Name:           block.Labels[0],
					Version:        version,
					PackageManager: schema.TerraformManager,
					Language:       schema.TerraformEcosystem,
					FilePath:       relPath,
				})
			}
		}
	}
	return deps, nil
}

// parseRequiredProviders walks terraform { required_providers { ... } }
// blocks. Each attribute is either an object with source/version keys or a
// bare constraint string (pre-0.13 form).
func parseRequiredProviders(relPath string, body hcl.Body) []schema.Dependency {
	var deps []schema.Dependency
	content, _, _ := body.PartialContent(terraformBlockSchema)
	for _, rp := range content.Blocks {
		attrs, _ := rp.Body.JustAttributes()
		for _, name := range sortedKeys(attrs) {
			val, valDiags := attrs[name].Expr.Value(nil)
			if valDiags.HasErrors() || !val.IsKnown() {
				continue
			}
			dep := schema.Dependency{
				Name:           name,
				PackageManager: schema.TerraformManager,
				Language:       schema.TerraformEcosystem,
				FilePath:       relPath,
			}
			switch {
			case val.Type() == cty.String:
				dep.Version = val.AsString()
			case val.Type().IsObjectType() || val.Type().IsMapType():
				vm := val.AsValueMap()
				if source, ok := vm["source"]; ok && source.Type() == cty.String {
					dep.Name = source.AsString()
				}
				if version, ok := vm["version"]; ok && version.Type() == cty.String {
					dep.Version = version.AsString()
				}
			}
			deps = append(deps, dep)
		}
	}
	return deps
}

// parseModuleBlock records a module call's source as a dependency. Modules
// without a source attribute (or with a non-literal one) are skipped.
func parseModuleBlock(relPath string, block *hcl.Block) []schema.Dependency {
	attrs, _, _ := block.Body.PartialContent(sourceVersionSchema)
	source := stringAttr(attrs.Attributes, "source")
	if source == "" {
		return nil
	}
	return []schema.Dependency{{
		Name:           source,
		Version:        stringAttr(attrs.Attributes, "version"),
		PackageManager: schema.TerraformManager,
		Language:       schema.TerraformEcosystem,
		FilePath:       relPath,
	}}
}

// parseTerraformLock extracts pinned provider versions from a
// .terraform.lock.hcl file.
func parseTerraformLock(relPath string, data []byte) ([]schema.Dependency, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, relPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid HCL: %s", diags.Error())
	}

	lockSchema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "provider", LabelNames: []string{"source"}},
		},
	}
	versionSchema := &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "version"}},
	}

	content, _, _ := file.Body.PartialContent(lockSchema)
	var deps []schema.Dependency
	for _, block := range content.Blocks {
		attrs, _, _ := block.Body.PartialContent(versionSchema)
		deps = append(deps, schema.Dependency{
			Name:           block.Labels[0],
			Version:        stringAttr(attrs.Attributes, "version"),
			PackageManager: schema.TerraformManager,
			Language:       schema.TerraformEcosystem,
			FilePath:       relPath,
		})
	}
	return deps, nil
}

// stringAttr evaluates a named attribute to a literal string, or "" when the
// attribute is absent or not statically known.
func stringAttr(attrs hcl.Attributes, name string) string {
	attr, ok := attrs[name]
	if !ok {
		return ""
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || !val.IsKnown() || val.Type() != cty.String {
		return ""
	}
	return val.AsString()
}
