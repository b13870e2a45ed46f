// ABOUTME: Streaming pull-parser for health export XML documents.
// ABOUTME: Emits one Entry at a time so multi-gigabyte exports stay bounded in memory.
package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harperreed/healthdb/internal/models"
)

// ErrTruncated marks an export document that ends mid-element. Callers treat
// it (and any XML syntax error) as fatal; everything else is skippable.
var ErrTruncated = errors.New("export document truncated")

// elementKinds maps export element names to entry kinds. Elements not listed
// here (and not in ignoredElements) are skipped and counted.
var elementKinds = map[string]models.EntryKind{
	"Record":             models.KindRecord,
	"Workout":            models.KindWorkout,
	"Correlation":        models.KindCorrelation,
	"ActivitySummary":    models.KindActivitySummary,
	"ClinicalRecord":     models.KindClinicalRecord,
	"Audiogram":          models.KindAudiogram,
	"VisionPrescription": models.KindVisionPrescription,
}

// ignoredElements are known export furniture, not data entries.
var ignoredElements = map[string]bool{
	"HealthData": true, // document root, descended into
	"ExportDate": true,
	"Me":         true,
}

// Parser reads a health export document as a forward-only sequence of
// entries. It is single-pass: once Next returns io.EOF the source must be
// reopened to read again.
type Parser struct {
	dec          *xml.Decoder
	closer       io.Closer
	withMetadata bool
	skipped      int
}

// NewParser wraps an already-open reader.
func NewParser(r io.Reader, withMetadata bool) *Parser {
	return &Parser{dec: xml.NewDecoder(r), withMetadata: withMetadata}
}

// Open opens the export document at path for parsing.
func Open(path string, withMetadata bool) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	p := NewParser(f, withMetadata)
	p.closer = f
	return p, nil
}

// Close releases the underlying file, if Open was used.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// Skipped reports how many unrecognized elements were passed over so far.
func (p *Parser) Skipped() int {
	return p.skipped
}

// Next returns the next entry in document order, or io.EOF at the end of the
// document. A correlation entry carries its nested records in Children.
func (p *Parser) Next() (*models.Entry, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, p.fatal(err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		name := start.Name.Local
		if ignoredElements[name] {
			if name != "HealthData" {
				if err := p.dec.Skip(); err != nil {
					return nil, p.fatal(err)
				}
			}
			continue
		}

		kind, known := elementKinds[name]
		if !known {
			p.skipped++
			if err := p.dec.Skip(); err != nil {
				return nil, p.fatal(err)
			}
			continue
		}

		entry, err := p.parseEntry(kind, start)
		if err != nil {
			return nil, err
		}
		return entry, nil
	}
}

// parseEntry builds an Entry from a start element and consumes everything up
// to its matching end tag.
func (p *Parser) parseEntry(kind models.EntryKind, start xml.StartElement) (*models.Entry, error) {
	entry := &models.Entry{Kind: kind, Attrs: attrMap(start)}

	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.fatal(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case kind == models.KindCorrelation && t.Name.Local == "Record":
				child, err := p.parseEntry(models.KindRecord, t)
				if err != nil {
					return nil, err
				}
				entry.Children = append(entry.Children, child)
			case p.withMetadata && t.Name.Local == "MetadataEntry":
				attrs := attrMap(t)
				entry.Metadata = append(entry.Metadata, models.KV{
					Key:   attrs["key"],
					Value: attrs["value"],
				})
				if err := p.dec.Skip(); err != nil {
					return nil, p.fatal(err)
				}
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, p.fatal(err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return entry, nil
			}
		}
	}
}

// fatal classifies a decoder error: any flavor of cut-off input becomes
// ErrTruncated, everything else (bad bytes, mismatched tags) surfaces as-is.
// The decoder reports EOF inside an open element as a SyntaxError.
func (p *Parser) fatal(err error) error {
	var syntaxErr *xml.SyntaxError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("parse export: %w", ErrTruncated)
	case errors.As(err, &syntaxErr) && strings.Contains(syntaxErr.Msg, "unexpected EOF"):
		return fmt.Errorf("parse export: %w", ErrTruncated)
	}
	return fmt.Errorf("parse export: %w", err)
}

func attrMap(start xml.StartElement) map[string]string {
	attrs := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}
