package excel

// ReaderConfig controls how tabular files are parsed
type ReaderConfig struct {
	// Sheet is the spreadsheet tab to read; empty selects the first sheet
	Sheet string `json:"sheet"`
	// Comma is the CSV field delimiter
	Comma rune `json:"comma"`
}

// DefaultReaderConfig returns the settings used for the bundled datasets
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Comma: ',',
	}
}
