package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HealthInput defines the input schema for the health tool.
type HealthInput struct{}

// NewHealthHandler creates the health tool handler.
func NewHealthHandler(deps *Dependencies) mcp.ToolHandlerFor[HealthInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input HealthInput) (*mcp.CallToolResult, any, error) {
		health, err := deps.API.Health(ctx)
		if err != nil {
			deps.Logger.Error("health check failed", "error", err)
			return ErrorResult("Blog API unreachable", "Start poesy-api or set API_URL"), nil, nil
		}
		return TextResult(fmt.Sprintf("%s %s (%d endpoints)", health.Message, health.Version, len(health.Endpoints))), nil, nil
	}
}
