package containers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx       mcp.ToolsetContext
	ecsClient func(context.Context, string) (*ecs.Client, string, error)
	ecrClient func(context.Context, string) (*ecr.Client, string, error)
	eksClient func(context.Context, string) (*eks.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	specs := []mcp.ToolSpec{
		{
			Name:        "ecs_list_clusters",
			Description: "List ECS clusters with status and counts.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListECSClusters,
		},
		{
			Name:        "ecs_describe_cluster",
			Description: "Describe an ECS cluster.",
			Parameters: mcp.ParamSchema{
				"cluster_name": {Type: "string", Required: true},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeECSCluster,
		},
		{
			Name:        "ecs_list_services",
			Description: "List services in an ECS cluster.",
			Parameters: mcp.ParamSchema{
				"cluster_name": {Type: "string", Required: true},
				"limit":        {Type: "integer"},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListECSServices,
		},
		{
			Name:        "ecs_list_tasks",
			Description: "List tasks in an ECS cluster, optionally filtered by desired status.",
			Parameters: mcp.ParamSchema{
				"cluster_name": {Type: "string", Required: true},
				"status":       {Type: "string", Enum: []string{"RUNNING", "PENDING", "STOPPED"}},
				"limit":        {Type: "integer"},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListECSTasks,
		},
		{
			Name:        "ecr_list_repositories",
			Description: "List ECR repositories.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListRepositories,
		},
		{
			Name:        "ecr_list_images",
			Description: "List image tags in an ECR repository.",
			Parameters: mcp.ParamSchema{
				"repository_name": {Type: "string", Required: true},
				"limit":           {Type: "integer"},
				"region":          {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListImages,
		},
	}
	return append(specs, s.eksSpecs()...)
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
