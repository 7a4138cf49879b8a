package management

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx        mcp.ToolsetContext
	cwClient   func(context.Context, string) (*cloudwatch.Client, string, error)
	logsClient func(context.Context, string) (*cloudwatchlogs.Client, string, error)
	cfnClient  func(context.Context, string) (*cloudformation.Client, string, error)
	costClient func(context.Context, string) (*costexplorer.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	specs := []mcp.ToolSpec{
		{
			Name:        "cloudwatch_list_alarms",
			Description: "List CloudWatch alarms, optionally filtered by state.",
			Parameters: mcp.ParamSchema{
				"state":  {Type: "string", Enum: []string{"OK", "ALARM", "INSUFFICIENT_DATA"}},
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListAlarms,
		},
		{
			Name:        "cloudwatch_get_metric_statistics",
			Description: "Fetch statistics for a CloudWatch metric over a recent window.",
			Parameters: mcp.ParamSchema{
				"namespace":   {Type: "string", Required: true, Description: "Metric namespace, e.g. AWS/EC2"},
				"metric_name": {Type: "string", Required: true},
				"dimensions":  {Type: "object", Description: "Dimension name to value map"},
				"statistic":   {Type: "string", Enum: []string{"Average", "Sum", "Minimum", "Maximum", "SampleCount"}},
				"hours":       {Type: "integer", Description: "Window length in hours, default 1"},
				"period":      {Type: "integer", Description: "Period in seconds, default 300"},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleMetricStatistics,
		},
		{
			Name:        "cloudwatch_list_log_groups",
			Description: "List CloudWatch log groups, optionally filtered by name prefix.",
			Parameters: mcp.ParamSchema{
				"prefix": {Type: "string"},
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListLogGroups,
		},
	}
	specs = append(specs, s.cloudformationSpecs()...)
	return append(specs, s.costSpecs()...)
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
