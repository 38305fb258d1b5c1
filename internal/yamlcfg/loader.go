// Package yamlcfg provides a YAML implementation of the config.Loader
// interface. Chain files share the shape of their HCL counterparts:
//
//	chains:
//	  - name: free_gift
//	    steps:
//	      - name: check_and_add_gift
//	        runner: min_total_gift
//	        arguments:
//	          min_total: 10000
//	          variant_id: 123456789
//
// Arguments travel to cty through JSON, so they follow JSON typing rules:
// maps become objects and sequences become tuples.
package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions handled by this loader.
var Extensions = []string{".yaml", ".yml"}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fileRoot struct {
	Chains []chainDoc `yaml:"chains"`
}

type chainDoc struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Steps       []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	Name      string         `yaml:"name"`
	Runner    string         `yaml:"runner"`
	Arguments map[string]any `yaml:"arguments"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every YAML file found under paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}

	model := &config.Model{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}
		chains, err := parse(data, file)
		if err != nil {
			return nil, err
		}
		model.Chains = append(model.Chains, chains...)
	}

	logger.Debug("YAML loading complete.", "files", len(files), "chains", len(model.Chains))
	return model, nil
}

func parse(data []byte, source string) ([]*config.Chain, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var root fileRoot
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", source, err)
	}

	chains := make([]*config.Chain, 0, len(root.Chains))
	for _, cd := range root.Chains {
		c := &config.Chain{
			Name:        cd.Name,
			Description: cd.Description,
			Source:      source,
			Steps:       make([]*config.Step, 0, len(cd.Steps)),
		}
		for _, sd := range cd.Steps {
			args, err := toCty(sd.Arguments)
			if err != nil {
				return nil, fmt.Errorf("in %s: chain '%s', step '%s': %w", source, cd.Name, sd.Name, err)
			}
			c.Steps = append(c.Steps, &config.Step{
				Name:      sd.Name,
				Runner:    sd.Runner,
				Arguments: args,
			})
		}
		chains = append(chains, c)
	}
	return chains, nil
}

// toCty converts decoded YAML arguments to an object value via JSON.
func toCty(args map[string]any) (cty.Value, error) {
	if len(args) == 0 {
		return cty.EmptyObjectVal, nil
	}
	buf, err := json.Marshal(args)
	if err != nil {
		return cty.NilVal, fmt.Errorf("arguments are not representable as JSON: %w", err)
	}
	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to infer argument types: %w", err)
	}
	val, err := ctyjson.Unmarshal(buf, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to convert arguments: %w", err)
	}
	return val, nil
}
