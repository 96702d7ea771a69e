package persist

import (
	"fmt"
	"os"

	"serieskeeper/internal/validate"
)

// Check validates the main state file in place without loading it. A
// missing file is reported as an error; parse failures become a single
// error issue.
func (m *Manager) Check() (*validate.Report, error) {
	data, err := os.ReadFile(m.mainPath)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	record, err := decodeRecord(data)
	if err != nil {
		return validate.Unreadable(err), nil
	}
	return validate.State(m.schema, record), nil
}
