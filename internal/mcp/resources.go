// ABOUTME: MCP resource implementations for the health store.
// ABOUTME: Provides healthdb://inventory and healthdb://schema resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// schemaDoc is the contract boundary consumed by query and chart
// collaborators: they read these tables and columns, nothing else.
const schemaDoc = `Normalized store schema:

records_norm(id, type, source_name, source_name_norm, unit, value, value_num,
             start_dt, end_dt, creation_dt)
workouts_norm(id, workout_activity_type, duration_min, total_distance_km,
              total_energy_kcal, source_name, source_name_norm, start_dt, end_dt)
correlations_norm(id, type, source_name, source_name_norm, start_dt, end_dt)
workout_routes(id, file_path UNIQUE, start_time, end_time, point_count,
               distance_km, min_lat, max_lat, min_lon, max_lon)
workout_route_points(route_id, point_index, lat, lon, ele, time)
ecg_records(id, file_path UNIQUE, recorded_date, classification, symptoms,
            sample_rate_hz, sample_count, lead, unit, device, software_version)
ecg_samples(ecg_id, sample_index, value)

Units: duration_min in minutes, total_distance_km in kilometers,
total_energy_kcal in kilocalories, distance_km in kilometers.
Timestamps: "YYYY-MM-DD HH:MM:SS" local time as exported.`

func (s *Server) registerResources() {
	// healthdb://inventory - full store summary
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthdb://inventory",
		Name:        "Store Inventory",
		Description: "Row counts and time spans per entry type across the store",
		MIMEType:    "application/json",
	}, s.handleInventoryResource)

	// healthdb://schema - the stable schema contract
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthdb://schema",
		Name:        "Store Schema",
		Description: "Normalized table and column reference for writing queries",
		MIMEType:    "text/plain",
	}, s.handleSchemaResource)
}

// Resource handlers

func (s *Server) handleInventoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	inv, err := s.store.Inventory()
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory: %w", err)
	}

	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inventory: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthdb://inventory",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleSchemaResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthdb://schema",
			MIMEType: "text/plain",
			Text:     schemaDoc,
		}},
	}, nil
}
