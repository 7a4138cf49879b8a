package management

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"awspanel/internal/mcp"
)

func (s *Service) cloudformationSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "cloudformation_list_stacks",
			Description: "List CloudFormation stacks, excluding deleted ones by default.",
			Parameters: mcp.ParamSchema{
				"include_deleted": {Type: "boolean"},
				"limit":           {Type: "integer"},
				"region":          {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListStacks,
		},
		{
			Name:        "cloudformation_describe_stack",
			Description: "Describe a CloudFormation stack with parameters and outputs.",
			Parameters: mcp.ParamSchema{
				"stack_name": {Type: "string", Required: true},
				"region":     {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeStack,
		},
		{
			Name:        "cloudformation_delete_stack",
			Description: "Delete a CloudFormation stack.",
			Parameters: mcp.ParamSchema{
				"stack_name": {Type: "string", Required: true},
				"region":     {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteStack,
		},
	}
}

func (s *Service) handleListStacks(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.cfnClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &cloudformation.ListStacksInput{}
	includeDeleted := mcp.AsBool(req.Arguments, "include_deleted")
	var stacks []map[string]any
	for {
		out, err := client.ListStacks(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, stack := range out.StackSummaries {
			if !includeDeleted && stack.StackStatus == cfntypes.StackStatusDeleteComplete {
				continue
			}
			stacks = append(stacks, map[string]any{
				"stack_name":   aws.ToString(stack.StackName),
				"stack_id":     aws.ToString(stack.StackId),
				"status":       string(stack.StackStatus),
				"created":      stack.CreationTime,
				"last_updated": stack.LastUpdatedTime,
			})
		}
		if limit > 0 && len(stacks) >= limit {
			stacks = stacks[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"stacks": stacks,
		"count":  len(stacks),
	}), nil
}

func (s *Service) handleDescribeStack(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "stack_name")
	if name == "" {
		return fail(errors.New("stack_name is required"))
	}
	client, usedRegion, err := s.cfnClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	if len(out.Stacks) == 0 {
		return fail(errors.New("stack not found: " + name))
	}
	stack := out.Stacks[0]
	parameters := map[string]string{}
	for _, param := range stack.Parameters {
		parameters[aws.ToString(param.ParameterKey)] = aws.ToString(param.ParameterValue)
	}
	outputs := map[string]string{}
	for _, output := range stack.Outputs {
		outputs[aws.ToString(output.OutputKey)] = aws.ToString(output.OutputValue)
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"stack": map[string]any{
			"stack_name":  aws.ToString(stack.StackName),
			"stack_id":    aws.ToString(stack.StackId),
			"status":      string(stack.StackStatus),
			"description": aws.ToString(stack.Description),
			"created":     stack.CreationTime,
			"parameters":  parameters,
			"outputs":     outputs,
		},
	}), nil
}

func (s *Service) handleDeleteStack(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "stack_name")
	if name == "" {
		return fail(errors.New("stack_name is required"))
	}
	client, usedRegion, err := s.cfnClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: aws.String(name)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"stack_name": name,
		"deleting":   true,
	}), nil
}
