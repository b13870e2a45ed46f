// ABOUTME: Parser for ECG CSV export files (metadata header + voltage samples).
// ABOUTME: Header rows are key,value pairs; the sample table is one number per line.
package ecg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/harperreed/healthdb/internal/models"
)

var (
	numberRe     = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	sampleRateRe = regexp.MustCompile(`([0-9]+(\.[0-9]+)?)`)
)

// Header keys that get their own columns; anything else lands in Extra.
const (
	keyRecordedDate    = "Recorded Date"
	keyClassification  = "Classification"
	keySymptoms        = "Symptoms"
	keySampleRate      = "Sample Rate"
	keyLead            = "Lead"
	keyUnit            = "Unit"
	keyDevice          = "Device"
	keySoftwareVersion = "Software Version"
)

// ParseFile reads one ECG export CSV. Metadata rows have two or more fields;
// single-field numeric rows are voltage samples. A recording with zero
// samples is returned as-is; callers decide whether to skip it.
func ParseFile(path string) (*models.ECGRecording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ecg file: %w", err)
	}
	defer f.Close()

	rec := &models.ECGRecording{FilePath: path, Extra: make(map[string]string)}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse ecg file: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if len(row) == 1 {
			value := strings.TrimSpace(row[0])
			if value == "" || !numberRe.MatchString(value) {
				continue
			}
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			rec.Samples = append(rec.Samples, v)
			continue
		}
		setMetadata(rec, strings.TrimSpace(row[0]), strings.TrimSpace(row[1]))
	}

	return rec, nil
}

func setMetadata(rec *models.ECGRecording, key, value string) {
	switch key {
	case keyRecordedDate:
		rec.RecordedDate = value
	case keyClassification:
		rec.Classification = value
	case keySymptoms:
		rec.Symptoms = value
	case keySampleRate:
		rec.SampleRateHz = parseSampleRate(value)
	case keyLead:
		rec.Lead = value
	case keyUnit:
		rec.Unit = value
	case keyDevice:
		rec.Device = value
	case keySoftwareVersion:
		rec.SoftwareVersion = value
	default:
		if key != "" {
			rec.Extra[key] = value
		}
	}
}

// parseSampleRate pulls the leading number out of strings like "512 hertz".
func parseSampleRate(value string) *float64 {
	m := sampleRateRe.FindString(value)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}
