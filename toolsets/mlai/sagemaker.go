package mlai

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx             mcp.ToolsetContext
	sagemakerClient func(context.Context, string) (*sagemaker.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "sagemaker_list_endpoints",
			Description: "List SageMaker inference endpoints.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListEndpoints,
		},
		{
			Name:        "sagemaker_list_models",
			Description: "List SageMaker models.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListModels,
		},
		{
			Name:        "sagemaker_list_notebook_instances",
			Description: "List SageMaker notebook instances.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListNotebooks,
		},
	}
}

func (s *Service) handleListEndpoints(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.sagemakerClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &sagemaker.ListEndpointsInput{}
	var endpoints []map[string]any
	for {
		out, err := client.ListEndpoints(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, endpoint := range out.Endpoints {
			endpoints = append(endpoints, map[string]any{
				"endpoint_name": aws.ToString(endpoint.EndpointName),
				"endpoint_arn":  aws.ToString(endpoint.EndpointArn),
				"status":        string(endpoint.EndpointStatus),
				"created":       endpoint.CreationTime,
				"last_modified": endpoint.LastModifiedTime,
			})
		}
		if limit > 0 && len(endpoints) >= limit {
			endpoints = endpoints[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"endpoints": endpoints,
		"count":     len(endpoints),
	}), nil
}

func (s *Service) handleListModels(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.sagemakerClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &sagemaker.ListModelsInput{}
	var models []map[string]any
	for {
		out, err := client.ListModels(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, model := range out.Models {
			models = append(models, map[string]any{
				"model_name": aws.ToString(model.ModelName),
				"model_arn":  aws.ToString(model.ModelArn),
				"created":    model.CreationTime,
			})
		}
		if limit > 0 && len(models) >= limit {
			models = models[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"models": models,
		"count":  len(models),
	}), nil
}

func (s *Service) handleListNotebooks(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.sagemakerClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &sagemaker.ListNotebookInstancesInput{}
	var notebooks []map[string]any
	for {
		out, err := client.ListNotebookInstances(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, notebook := range out.NotebookInstances {
			notebooks = append(notebooks, map[string]any{
				"notebook_instance_name": aws.ToString(notebook.NotebookInstanceName),
				"arn":                    aws.ToString(notebook.NotebookInstanceArn),
				"status":                 string(notebook.NotebookInstanceStatus),
				"instance_type":          string(notebook.InstanceType),
				"created":                notebook.CreationTime,
			})
		}
		if limit > 0 && len(notebooks) >= limit {
			notebooks = notebooks[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":             usedRegion,
		"notebook_instances": notebooks,
		"count":              len(notebooks),
	}), nil
}

func (s *Service) ok(data map[string]any) mcp.ToolResult {
	data["success"] = true
	if s.ctx.Redactor != nil {
		return mcp.ToolResult{Data: s.ctx.Redactor.RedactValue(data)}
	}
	return mcp.ToolResult{Data: data}
}

func fail(err error) (mcp.ToolResult, error) {
	return mcp.ToolResult{}, err
}
