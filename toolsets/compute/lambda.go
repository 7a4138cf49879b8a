package compute

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"awspanel/internal/mcp"
)

func (s *Service) lambdaSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "lambda_list_functions",
			Description: "List Lambda functions.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleLambdaListFunctions,
		},
		{
			Name:        "lambda_get_function",
			Description: "Get a Lambda function's configuration.",
			Parameters: mcp.ParamSchema{
				"function_name": {Type: "string", Required: true},
				"region":        {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleLambdaGetFunction,
		},
		{
			Name:        "lambda_create_function",
			Description: "Create a Lambda function from a base64-encoded zip.",
			Parameters: mcp.ParamSchema{
				"function_name": {Type: "string", Required: true},
				"runtime":       {Type: "string", Required: true, Description: "Lambda runtime, e.g. python3.12"},
				"role_arn":      {Type: "string", Required: true, Description: "Execution role ARN"},
				"handler":       {Type: "string", Required: true},
				"zip_base64":    {Type: "string", Required: true, Description: "Deployment package, base64-encoded zip"},
				"region":        {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleLambdaCreateFunction,
		},
		{
			Name:        "lambda_invoke_function",
			Description: "Invoke a Lambda function synchronously.",
			Parameters: mcp.ParamSchema{
				"function_name": {Type: "string", Required: true},
				"payload":       {Type: "object", Description: "JSON event passed to the function"},
				"region":        {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleLambdaInvokeFunction,
		},
		{
			Name:        "lambda_delete_function",
			Description: "Delete a Lambda function.",
			Parameters: mcp.ParamSchema{
				"function_name": {Type: "string", Required: true},
				"region":        {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleLambdaDeleteFunction,
		},
	}
}

func (s *Service) handleLambdaListFunctions(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.lambdaClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &lambda.ListFunctionsInput{}
	var functions []map[string]any
	for {
		out, err := client.ListFunctions(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, fn := range out.Functions {
			functions = append(functions, summarizeFunction(fn))
		}
		if limit > 0 && len(functions) >= limit {
			functions = functions[:limit]
			break
		}
		if aws.ToString(out.NextMarker) == "" {
			break
		}
		input.Marker = out.NextMarker
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"functions": functions,
		"count":     len(functions),
	}), nil
}

func (s *Service) handleLambdaGetFunction(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "function_name")
	if name == "" {
		return fail(errors.New("function_name is required"))
	}
	client, usedRegion, err := s.lambdaClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{"region": usedRegion}
	if out.Configuration != nil {
		data["function"] = summarizeFunction(*out.Configuration)
	}
	return s.ok(data), nil
}

func (s *Service) handleLambdaCreateFunction(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "function_name")
	runtime := mcp.AsString(req.Arguments, "runtime")
	roleARN := mcp.AsString(req.Arguments, "role_arn")
	handler := mcp.AsString(req.Arguments, "handler")
	zipB64 := mcp.AsString(req.Arguments, "zip_base64")
	if name == "" || runtime == "" || roleARN == "" || handler == "" || zipB64 == "" {
		return fail(errors.New("function_name, runtime, role_arn, handler and zip_base64 are required"))
	}
	zipData, err := base64.StdEncoding.DecodeString(zipB64)
	if err != nil {
		return fail(errors.New("zip_base64 is not valid base64"))
	}
	client, usedRegion, err := s.lambdaClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(name),
		Runtime:      lambdatypes.Runtime(runtime),
		Role:         aws.String(roleARN),
		Handler:      aws.String(handler),
		Code:         &lambdatypes.FunctionCode{ZipFile: zipData},
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":        usedRegion,
		"function_name": aws.ToString(out.FunctionName),
		"function_arn":  aws.ToString(out.FunctionArn),
		"state":         string(out.State),
	}), nil
}

func (s *Service) handleLambdaInvokeFunction(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "function_name")
	if name == "" {
		return fail(errors.New("function_name is required"))
	}
	client, usedRegion, err := s.lambdaClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &lambda.InvokeInput{FunctionName: aws.String(name)}
	if payload := mcp.AsMap(req.Arguments, "payload"); payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fail(err)
		}
		input.Payload = encoded
	}
	out, err := client.Invoke(ctx, input)
	if err != nil {
		return fail(err)
	}
	data := map[string]any{
		"region":        usedRegion,
		"function_name": name,
		"status_code":   out.StatusCode,
	}
	if out.FunctionError != nil {
		data["function_error"] = aws.ToString(out.FunctionError)
	}
	if len(out.Payload) > 0 {
		var decoded any
		if err := json.Unmarshal(out.Payload, &decoded); err == nil {
			data["payload"] = decoded
		} else {
			data["payload"] = string(out.Payload)
		}
	}
	return s.ok(data), nil
}

func (s *Service) handleLambdaDeleteFunction(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "function_name")
	if name == "" {
		return fail(errors.New("function_name is required"))
	}
	client, usedRegion, err := s.lambdaClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{FunctionName: aws.String(name)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":        usedRegion,
		"function_name": name,
		"deleted":       true,
	}), nil
}

func summarizeFunction(fn lambdatypes.FunctionConfiguration) map[string]any {
	return map[string]any{
		"function_name": aws.ToString(fn.FunctionName),
		"function_arn":  aws.ToString(fn.FunctionArn),
		"runtime":       string(fn.Runtime),
		"handler":       aws.ToString(fn.Handler),
		"memory_size":   aws.ToInt32(fn.MemorySize),
		"timeout":       aws.ToInt32(fn.Timeout),
		"last_modified": aws.ToString(fn.LastModified),
	}
}
