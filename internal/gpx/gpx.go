// ABOUTME: GPX track file parsing and great-circle distance computation.
// ABOUTME: Streams trackpoints so large route files never load whole into memory.
package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/harperreed/healthdb/internal/models"
)

// earthRadiusKm is the IUGG mean Earth radius.
const earthRadiusKm = 6371.0088

// ParseFile reads a GPX file and returns the route with its accumulated
// great-circle distance, bounding box, and time span. Files with no
// trackpoints yield a route with zero points; callers decide whether to skip.
func ParseFile(path string) (*models.Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open route file: %w", err)
	}
	defer f.Close()

	route := &models.Route{FilePath: path}
	dec := xml.NewDecoder(f)

	var last *models.RoutePoint
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse route file: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "trkpt" {
			continue
		}

		pt, err := parseTrackpoint(dec, start)
		if err != nil {
			return nil, err
		}

		if pt.Lat != nil && pt.Lon != nil {
			expandBounds(route, *pt.Lat, *pt.Lon)
			if last != nil {
				route.DistanceKm += HaversineKm(*last.Lat, *last.Lon, *pt.Lat, *pt.Lon)
			}
			last = pt
		}
		route.Points = append(route.Points, *pt)
	}

	if len(route.Points) > 0 {
		route.StartTime = route.Points[0].Time
		route.EndTime = route.Points[len(route.Points)-1].Time
	}
	return route, nil
}

// parseTrackpoint consumes one trkpt element including its ele/time children.
func parseTrackpoint(dec *xml.Decoder, start xml.StartElement) (*models.RoutePoint, error) {
	pt := &models.RoutePoint{}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "lat":
			pt.Lat = parseFloat(a.Value)
		case "lon":
			pt.Lon = parseFloat(a.Value)
		}
	}

	var inner string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse route file: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inner = t.Name.Local
		case xml.CharData:
			switch inner {
			case "ele":
				pt.Ele = parseFloat(strings.TrimSpace(string(t)))
			case "time":
				pt.Time = strings.TrimSpace(string(t))
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return pt, nil
			}
			inner = ""
		}
	}
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func expandBounds(r *models.Route, lat, lon float64) {
	if r.MinLat == nil || lat < *r.MinLat {
		v := lat
		r.MinLat = &v
	}
	if r.MaxLat == nil || lat > *r.MaxLat {
		v := lat
		r.MaxLat = &v
	}
	if r.MinLon == nil || lon < *r.MinLon {
		v := lon
		r.MinLon = &v
	}
	if r.MaxLon == nil || lon > *r.MaxLon {
		v := lon
		r.MaxLon = &v
	}
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
