package document

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Asker reads one operator response for a label.
type Asker interface {
	Ask(label string) (string, error)
}

// Complete prompts for every descriptive field that is still unset. Fields that
// already hold a value are reported and skipped, so a resumed session only asks
// for what is missing. Empty responses leave the field unset.
func (d *Document) Complete(asker Asker, log zerolog.Logger) error {
	log.Info().Str("document", d.Name).Msg("Please input metadata")
	for _, field := range d.Fields() {
		if field.Value.IsSet() {
			log.Info().
				Str("document", d.Name).
				Str("field", field.Key).
				Stringer("value", *field.Value).
				Msg("Skipping field")
			continue
		}
		response, err := asker.Ask(fmt.Sprintf("%s (%s)", field.Label, field.Key))
		if err != nil {
			return fmt.Errorf("failed to read %s for %s: %w", field.Key, d.Filename, err)
		}
		*field.Value = ParseAnswer(response)
	}
	return nil
}
