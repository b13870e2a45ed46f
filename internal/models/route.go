// ABOUTME: Route and RoutePoint models for parsed GPS track files.
// ABOUTME: Produced by the gpx package, consumed by the route importer.
package models

// RoutePoint is one trackpoint from a route file. Elevation and Time stay
// nullable because not every device writes them.
type RoutePoint struct {
	Lat  *float64
	Lon  *float64
	Ele  *float64
	Time string
}

// Route is a fully parsed track file: the ordered points plus the summary
// fields the store keeps (distance, bounding box, time span).
type Route struct {
	FilePath   string
	StartTime  string
	EndTime    string
	DistanceKm float64
	MinLat     *float64
	MaxLat     *float64
	MinLon     *float64
	MaxLon     *float64
	Points     []RoutePoint
}
