package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkjsonrpc "github.com/modelcontextprotocol/go-sdk/jsonrpc"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterSDKTools exposes the flat registry over an MCP stdio server.
// The same dispatcher serves both transports, so normalization, fallback
// and auditing behave identically.
func RegisterSDKTools(server *sdkmcp.Server, reg *ToolRegistry, dispatcher *Dispatcher) ([]string, error) {
	if server == nil || reg == nil || dispatcher == nil {
		return nil, fmt.Errorf("server, registry and dispatcher are required")
	}
	for _, spec := range reg.Specs() {
		tool := &sdkmcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.Parameters.JSONSchema(),
		}
		server.AddTool(tool, sdkToolHandler(spec.Name, dispatcher))
	}
	return reg.Names(), nil
}

func sdkToolHandler(name string, dispatcher *Dispatcher) sdkmcp.ToolHandler {
	return func(callCtx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, &sdkjsonrpc.Error{Code: sdkjsonrpc.CodeInvalidParams, Message: fmt.Sprintf("invalid arguments: %v", err)}
			}
		}
		call := dispatcher.Execute(callCtx, name, args)
		return buildCallToolResult(call), nil
	}
}

func buildCallToolResult(call ToolCallResult) *sdkmcp.CallToolResult {
	res := &sdkmcp.CallToolResult{}
	if call.Err != nil {
		res.IsError = true
		res.StructuredContent = call.Result
		res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: call.Err.Error()}}
		return res
	}
	if call.Result != nil {
		res.StructuredContent = call.Result
		dataJSON, err := json.Marshal(call.Result)
		if err != nil {
			res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: fmt.Sprintf("%v", call.Result)}}
		} else {
			res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: string(dataJSON)}}
		}
	} else {
		res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: "{}"}}
	}
	return res
}
