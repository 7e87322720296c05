package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/soltixdb/trendcast/internal/utils"
)

// WriteIndicatorsMarkdown writes names as a markdown bullet list
func WriteIndicatorsMarkdown(w io.Writer, names []string) error {
	if _, err := io.WriteString(w, "# Unique Indicators in the Dataset\n\n"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "- `%s`\n", name); err != nil {
			return err
		}
	}
	return nil
}

// WriteIndicatorsFile writes the markdown list to path atomically
func WriteIndicatorsFile(path string, names []string) error {
	err := utils.WriteFileAtomic(path, os.FileMode(0o644), func(w io.Writer) error {
		return WriteIndicatorsMarkdown(w, names)
	})
	if err != nil {
		return fmt.Errorf("failed to write indicators %s: %w", path, err)
	}
	return nil
}
