package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/logger"

	"gopkg.in/yaml.v3"
)

func LoadModelsFromDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no resource definitions found in %s", dir)
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		model, err := decodeModel(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		model.Name = name
		Registry[name] = model
		logger.Debug("resource_loaded", map[string]any{
			"resource":  name,
			"table":     model.Table,
			"fields":    len(model.Fields),
			"filters":   len(model.Filters),
			"relations": len(model.Relations),
		})
	}
	return nil
}

// decodeModel validates the document keys on the yaml.Node tree first so
// that typos surface as errors instead of silently dropped settings.
func decodeModel(data []byte) (*Model, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	// [0] is the document, its content is the root mapping
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty YAML")
	}
	if err := validateYAMLNode(root.Content[0], "model"); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	var model Model
	if err := root.Decode(&model); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	return &model, nil
}
