// Package loader selects and combines the format-specific chain loaders.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/fsutil"
	"github.com/vk/cartchain/internal/hcl"
	"github.com/vk/cartchain/internal/yamlcfg"
)

// ErrNoChains is returned when the configured paths hold no chain.
var ErrNoChains = errors.New("no chains found")

// Multi runs several loaders over the same paths and merges their models.
type Multi struct {
	loaders []config.Loader
}

// New creates a loader that reads every supported format.
func New() *Multi {
	return &Multi{loaders: []config.Loader{hcl.NewLoader(), yamlcfg.NewLoader()}}
}

// ForPaths creates a loader limited to the formats actually present under
// paths. HCL is used when nothing is found so that the resulting error
// stays meaningful.
func ForPaths(paths []string) (*Multi, error) {
	m := &Multi{}

	hclFiles, err := fsutil.CollectFiles(paths, hcl.Extension)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) > 0 {
		m.loaders = append(m.loaders, hcl.NewLoader())
	}

	yamlFiles, err := fsutil.CollectFiles(paths, yamlcfg.Extensions...)
	if err != nil {
		return nil, err
	}
	if len(yamlFiles) > 0 {
		m.loaders = append(m.loaders, yamlcfg.NewLoader())
	}

	if len(m.loaders) == 0 {
		m.loaders = append(m.loaders, hcl.NewLoader())
	}
	return m, nil
}

// Load runs every loader, merges the results and validates the combined
// model.
func (m *Multi) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	model := &config.Model{}
	for _, l := range m.loaders {
		part, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		model.Merge(part)
	}

	if len(model.Chains) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoChains, paths)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("Chain definitions loaded.", "chains", model.Names())
	return model, nil
}
