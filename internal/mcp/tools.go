// ABOUTME: MCP tool implementations for querying the health store.
// ABOUTME: Inventory, normalized record/workout queries, route and ECG listings.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// inventory
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "inventory",
		Description: "Summarize the store: row counts and time spans per record type and workout activity type",
	}, s.handleInventory)

	// query_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_records",
		Description: "Query normalized health records, optionally filtered by type and time range",
	}, s.handleQueryRecords)

	// query_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_workouts",
		Description: "Query normalized workouts (duration in minutes, distance in km, energy in kcal)",
	}, s.handleQueryWorkouts)

	// list_routes
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_routes",
		Description: "List imported workout routes with distance and start time",
	}, s.handleListRoutes)

	// list_ecgs
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_ecgs",
		Description: "List imported ECG recordings with classification and sample rate",
	}, s.handleListECGs)
}

// Tool input types

type queryRecordsInput struct {
	Type  string `json:"type,omitempty" jsonschema:"Record type (e.g. HKQuantityTypeIdentifierHeartRate)"`
	Since string `json:"since,omitempty" jsonschema:"Earliest start time (YYYY-MM-DD HH:MM:SS prefix)"`
	Until string `json:"until,omitempty" jsonschema:"Latest start time (YYYY-MM-DD HH:MM:SS prefix)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 50)"`
}

type queryWorkoutsInput struct {
	ActivityType string `json:"activity_type,omitempty" jsonschema:"Workout activity type filter"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Max results (default 50)"`
}

type listInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 50)"`
}

type emptyInput struct{}

// Tool handlers

func (s *Server) handleInventory(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	inv, err := s.store.Inventory()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build inventory: %w", err)
	}
	return nil, inv, nil
}

func (s *Server) handleQueryRecords(ctx context.Context, req *mcp.CallToolRequest, input queryRecordsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	records, err := s.store.QueryRecords(input.Type, input.Since, input.Until, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query records (has postprocess run?): %w", err)
	}
	if len(records) == 0 {
		return nil, map[string]interface{}{"message": "No records found."}, nil
	}
	return nil, records, nil
}

func (s *Server) handleQueryWorkouts(ctx context.Context, req *mcp.CallToolRequest, input queryWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	workouts, err := s.store.QueryWorkouts(input.ActivityType, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query workouts (has postprocess run?): %w", err)
	}
	if len(workouts) == 0 {
		return nil, map[string]interface{}{"message": "No workouts found."}, nil
	}
	return nil, workouts, nil
}

func (s *Server) handleListRoutes(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	routes, err := s.store.ListRoutes(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list routes: %w", err)
	}
	if len(routes) == 0 {
		return nil, map[string]interface{}{"message": "No routes imported."}, nil
	}
	return nil, routes, nil
}

func (s *Server) handleListECGs(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	ecgs, err := s.store.ListECGs(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ecgs: %w", err)
	}
	if len(ecgs) == 0 {
		return nil, map[string]interface{}{"message": "No ECG recordings imported."}, nil
	}
	return nil, ecgs, nil
}
