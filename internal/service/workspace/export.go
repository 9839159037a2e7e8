package workspace

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"imgtree/internal/domain"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export encodes the nested folder tree
func (w *workspace) Export(format string) ([]byte, error) {
	roots := w.Tree()

	switch strings.ToLower(format) {
	case "", FormatJSON:
		data, err := json.MarshalIndent(roots, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode tree: %w", err)
		}
		return data, nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(roots)
		if err != nil {
			return nil, fmt.Errorf("encode tree: %w", err)
		}
		return data, nil
	default:
		return nil, domain.NewValidation("unsupported export format %q (use json or yaml)", format)
	}
}
