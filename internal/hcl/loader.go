package hcl

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/fsutil"
)

// Extension is the file extension handled by this loader.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// parsedFile is a decoded file waiting for translation.
type parsedFile struct {
	name string
	root fileRoot
}

// Load orchestrates the entire HCL configuration loading process. Locals
// from every file are evaluated before any chain, so a chain may use a local
// declared in another file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	parsed := make([]parsedFile, 0, len(files))
	var localAttrs []*hcl.Attribute

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Locals {
			attrs, diags := block.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid locals block in %s: %w", file, diags)
			}
			for _, attr := range attrs {
				localAttrs = append(localAttrs, attr)
			}
		}
		parsed = append(parsed, parsedFile{name: file, root: root})
	}

	locals, err := evalLocals(ctx, localAttrs)
	if err != nil {
		return nil, err
	}
	evalCtx := newEvalContext(locals)

	model := &config.Model{}
	for _, pf := range parsed {
		for _, cb := range pf.root.Chains {
			c, err := translateChain(ctx, cb, pf.name, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", pf.name, err)
			}
			model.Chains = append(model.Chains, c)
		}
	}

	logger.Debug("HCL loading complete.", "chains", len(model.Chains), "locals", len(locals))
	return model, nil
}

// sortAttributes orders attributes by their position in the source, making
// evaluation and error reporting deterministic.
func sortAttributes(attrs []*hcl.Attribute) {
	slices.SortFunc(attrs, func(a, b *hcl.Attribute) int {
		if a.Range.Filename != b.Range.Filename {
			if a.Range.Filename < b.Range.Filename {
				return -1
			}
			return 1
		}
		return a.Range.Start.Byte - b.Range.Start.Byte
	})
}
