package render

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"folio/layout"
)

// WriteTree writes the formatted node roots as a stream of Ion text
// values, one per root. It is a diagnostic output: node geometry and
// resolved attributes after formatting, before any drawing happens.
func (res *Result) WriteTree(outputPath string, overwrite bool, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("tree")

	if err := prepareOutputPath(outputPath, overwrite, log); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	for i, root := range res.Roots {
		if i > 0 {
			if _, err := f.WriteString("\n"); err != nil {
				return err
			}
		}
		if err := layout.EncodeNode(f, root); err != nil {
			return fmt.Errorf("unable to encode node tree: %w", err)
		}
	}
	log.Debug("tree written", zap.String("file", outputPath), zap.Int("roots", len(res.Roots)))
	return nil
}
