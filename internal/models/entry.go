// ABOUTME: Entry model and EntryKind enum for parsed export elements.
// ABOUTME: One Entry per top-level element in the health export document.
package models

// EntryKind identifies which table a parsed export element belongs to.
type EntryKind string

const (
	KindRecord             EntryKind = "record"
	KindWorkout            EntryKind = "workout"
	KindCorrelation        EntryKind = "correlation"
	KindActivitySummary    EntryKind = "activity_summary"
	KindClinicalRecord     EntryKind = "clinical_record"
	KindAudiogram          EntryKind = "audiogram"
	KindVisionPrescription EntryKind = "vision_prescription"
)

// AllEntryKinds lists every kind the parser emits, in export order of appearance.
var AllEntryKinds = []EntryKind{
	KindRecord, KindWorkout, KindCorrelation, KindActivitySummary,
	KindClinicalRecord, KindAudiogram, KindVisionPrescription,
}

// KV holds one MetadataEntry key/value pair attached to a record.
type KV struct {
	Key   string
	Value string
}

// Entry is one parsed element from the export document. Attrs holds the raw
// attribute strings untouched; typing happens later in normalization.
// Correlations carry their nested sub-records in Children.
type Entry struct {
	Kind     EntryKind
	Attrs    map[string]string
	Children []*Entry
	Metadata []KV
}

// Attr returns the named attribute or "" when absent.
func (e *Entry) Attr(name string) string {
	return e.Attrs[name]
}
