package compute

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx          mcp.ToolsetContext
	ec2Client    func(context.Context, string) (*ec2.Client, string, error)
	asgClient    func(context.Context, string) (*autoscaling.Client, string, error)
	elbClient    func(context.Context, string) (*elasticloadbalancingv2.Client, string, error)
	lambdaClient func(context.Context, string) (*lambda.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	specs := []mcp.ToolSpec{
		{
			Name:        "list_ec2_instances",
			Description: "List EC2 instances in a region, optionally filtered.",
			Parameters: mcp.ParamSchema{
				"region":  {Type: "string", Description: "AWS region, defaults to the account region"},
				"state":   {Type: "string", Description: "Instance state filter", Enum: []string{"pending", "running", "stopping", "stopped", "shutting-down", "terminated"}},
				"filters": {Type: "array", Description: "EC2 filters as {Name, Values} objects", Items: &mcp.ParamSpec{Type: "object"}},
				"limit":   {Type: "integer", Description: "Maximum number of instances to return"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListInstances,
		},
		{
			Name:        "get_ec2_instance",
			Description: "Get one EC2 instance by id.",
			Parameters: mcp.ParamSchema{
				"instance_id": {Type: "string", Description: "EC2 instance id", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleGetInstance,
		},
		{
			Name:        "create_ec2_instance",
			Description: "Launch a new EC2 instance. Defaults to the latest Amazon Linux 2023 AMI and t2.micro.",
			Parameters: mcp.ParamSchema{
				"image_id":           {Type: "string", Description: "AMI id, latest Amazon Linux 2023 when omitted"},
				"instance_type":      {Type: "string", Description: "Instance type, defaults to t2.micro"},
				"key_name":           {Type: "string", Description: "Key pair for SSH access"},
				"security_group_ids": {Type: "array", Items: &mcp.ParamSpec{Type: "string"}},
				"subnet_id":          {Type: "string"},
				"name":               {Type: "string", Description: "Value for the Name tag"},
				"region":             {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateInstance,
		},
		{
			Name:        "start_ec2_instance",
			Description: "Start a stopped EC2 instance.",
			Parameters: mcp.ParamSchema{
				"instance_id": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleStartInstance,
		},
		{
			Name:        "stop_ec2_instance",
			Description: "Stop a running EC2 instance.",
			Parameters: mcp.ParamSchema{
				"instance_id": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleStopInstance,
		},
		{
			Name:        "terminate_ec2_instance",
			Description: "Terminate an EC2 instance. This cannot be undone.",
			Parameters: mcp.ParamSchema{
				"instance_id": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleTerminateInstance,
		},
		{
			Name:        "modify_instance_security_groups",
			Description: "Replace the security groups attached to an EC2 instance.",
			Parameters: mcp.ParamSchema{
				"instance_id":        {Type: "string", Required: true},
				"security_group_ids": {Type: "array", Required: true, Items: &mcp.ParamSpec{Type: "string"}},
				"region":             {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleModifySecurityGroups,
		},
		{
			Name:        "search_amis",
			Description: "Search AMIs by owner and filters.",
			Parameters: mcp.ParamSchema{
				"owners":  {Type: "array", Description: "AMI owners, e.g. amazon or an account id", Items: &mcp.ParamSpec{Type: "string"}},
				"filters": {Type: "array", Description: "EC2 filters as {Name, Values} objects", Items: &mcp.ParamSpec{Type: "object"}},
				"limit":   {Type: "integer"},
				"region":  {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleSearchAMIs,
		},
		{
			Name:        "create_ami_from_instance",
			Description: "Create an AMI from a running instance.",
			Parameters: mcp.ParamSchema{
				"instance_id": {Type: "string", Required: true},
				"name":        {Type: "string", Required: true},
				"description": {Type: "string"},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateAMI,
		},
		{
			Name:        "create_launch_template",
			Description: "Create an EC2 launch template.",
			Parameters: mcp.ParamSchema{
				"name":               {Type: "string", Required: true},
				"image_id":           {Type: "string", Required: true},
				"instance_type":      {Type: "string"},
				"key_name":           {Type: "string"},
				"security_group_ids": {Type: "array", Items: &mcp.ParamSpec{Type: "string"}},
				"region":             {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateLaunchTemplate,
		},
		{
			Name:        "list_launch_templates",
			Description: "List EC2 launch templates.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListLaunchTemplates,
		},
		{
			Name:        "create_autoscaling_group",
			Description: "Create an Auto Scaling group from a launch template.",
			Parameters: mcp.ParamSchema{
				"name":                 {Type: "string", Required: true},
				"launch_template_name": {Type: "string", Required: true},
				"min_size":             {Type: "integer", Required: true},
				"max_size":             {Type: "integer", Required: true},
				"desired_capacity":     {Type: "integer"},
				"subnet_ids":           {Type: "array", Items: &mcp.ParamSpec{Type: "string"}},
				"region":               {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateASG,
		},
		{
			Name:        "list_autoscaling_groups",
			Description: "List Auto Scaling groups.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListASGs,
		},
		{
			Name:        "list_load_balancers",
			Description: "List ALB/NLB load balancers.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListLoadBalancers,
		},
		{
			Name:        "list_target_groups",
			Description: "List ALB/NLB target groups.",
			Parameters: mcp.ParamSchema{
				"load_balancer_arn": {Type: "string"},
				"region":            {Type: "string"},
				"limit":             {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListTargetGroups,
		},
		{
			Name:        "create_target_group",
			Description: "Create a target group for a load balancer.",
			Parameters: mcp.ParamSchema{
				"name":     {Type: "string", Required: true},
				"protocol": {Type: "string", Enum: []string{"HTTP", "HTTPS", "TCP", "TLS", "UDP"}},
				"port":     {Type: "integer"},
				"vpc_id":   {Type: "string", Required: true},
				"region":   {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateTargetGroup,
		},
	}
	return append(specs, s.lambdaSpecs()...)
}

func ec2Filters(args map[string]any) []ec2types.Filter {
	var filters []ec2types.Filter
	for _, entry := range mcp.AsMapSlice(args, "filters") {
		name := mcp.AsString(entry, "Name")
		values := mcp.AsStringSlice(entry, "Values")
		if name == "" || len(values) == 0 {
			continue
		}
		filters = append(filters, ec2types.Filter{Name: &name, Values: values})
	}
	return filters
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
