// ABOUTME: ECG recording model for parsed electrocardiogram export files.
// ABOUTME: Metadata header fields plus the voltage sample sequence.
package models

// Classification values seen in Apple Watch ECG exports. Unrecognized
// classifications are stored verbatim; this list exists for queries and tests.
const (
	ECGSinusRhythm        = "Sinus Rhythm"
	ECGAtrialFibrillation = "Atrial Fibrillation"
	ECGInconclusive       = "Inconclusive"
	ECGUnclassified       = "Unclassified"
)

// ECGRecording is one parsed ECG export file: the metadata header block and
// the voltage samples that follow it.
type ECGRecording struct {
	FilePath        string
	RecordedDate    string
	Classification  string
	Symptoms        string
	SampleRateHz    *float64
	Lead            string
	Unit            string
	Device          string
	SoftwareVersion string
	// Extra keeps header keys that have no dedicated column, serialized to
	// JSON by the importer.
	Extra   map[string]string
	Samples []float64
}
