package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53resolver"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx            mcp.ToolsetContext
	ec2Client      func(context.Context, string) (*ec2.Client, string, error)
	resolverClient func(context.Context, string) (*route53resolver.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "list_vpcs",
			Description: "List VPCs in a region.",
			Parameters: mcp.ParamSchema{
				"region":  {Type: "string"},
				"filters": {Type: "array", Description: "EC2 filters as {Name, Values} objects", Items: &mcp.ParamSpec{Type: "object"}},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListVPCs,
		},
		{
			Name:        "describe_vpc",
			Description: "Describe one VPC by id.",
			Parameters: mcp.ParamSchema{
				"vpc_id": {Type: "string", Required: true},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeVPC,
		},
		{
			Name:        "create_secure_vpc",
			Description: "Create a VPC with DNS support and a Name tag.",
			Parameters: mcp.ParamSchema{
				"cidr_block": {Type: "string", Required: true, Description: "VPC CIDR, e.g. 10.0.0.0/16"},
				"name":       {Type: "string"},
				"region":     {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateVPC,
		},
		{
			Name:        "list_subnets",
			Description: "List subnets, optionally for one VPC.",
			Parameters: mcp.ParamSchema{
				"vpc_id": {Type: "string"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListSubnets,
		},
		{
			Name:        "list_security_groups",
			Description: "List security groups, optionally for one VPC.",
			Parameters: mcp.ParamSchema{
				"vpc_id": {Type: "string"},
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListSecurityGroups,
		},
		{
			Name:        "create_security_group",
			Description: "Create a security group in a VPC.",
			Parameters: mcp.ParamSchema{
				"group_name":  {Type: "string", Required: true},
				"description": {Type: "string", Required: true},
				"vpc_id":      {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateSecurityGroup,
		},
		{
			Name:        "list_route_tables",
			Description: "List route tables, optionally for one VPC.",
			Parameters: mcp.ParamSchema{
				"vpc_id": {Type: "string"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListRouteTables,
		},
		{
			Name:        "list_nat_gateways",
			Description: "List NAT gateways, optionally for one VPC.",
			Parameters: mcp.ParamSchema{
				"vpc_id": {Type: "string"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListNATGateways,
		},
		{
			Name:        "list_resolver_endpoints",
			Description: "List Route 53 Resolver endpoints.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListResolverEndpoints,
		},
		{
			Name:        "list_resolver_rules",
			Description: "List Route 53 Resolver rules.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListResolverRules,
		},
	}
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

func vpcFilter(vpcID string) []ec2types.Filter {
	if vpcID == "" {
		return nil
	}
	return []ec2types.Filter{{Name: aws.String("vpc-id"), Values: []string{vpcID}}}
}

func (s *Service) handleListVPCs(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{Filters: ec2Filters(req.Arguments)})
	if err != nil {
		return fail(err)
	}
	var vpcs []map[string]any
	for _, vpc := range out.Vpcs {
		vpcs = append(vpcs, summarizeVPC(vpc))
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"vpcs":   vpcs,
		"count":  len(vpcs),
	}), nil
}

func (s *Service) handleDescribeVPC(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	vpcID := mcp.AsString(req.Arguments, "vpc_id")
	if vpcID == "" {
		return fail(errors.New("vpc_id is required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}})
	if err != nil {
		return fail(err)
	}
	if len(out.Vpcs) == 0 {
		return fail(fmt.Errorf("vpc %s not found", vpcID))
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"vpc":    summarizeVPC(out.Vpcs[0]),
	}), nil
}

func (s *Service) handleCreateVPC(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	cidr := mcp.AsString(req.Arguments, "cidr_block")
	if cidr == "" {
		return fail(errors.New("cidr_block is required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &ec2.CreateVpcInput{CidrBlock: aws.String(cidr)}
	if name := mcp.AsString(req.Arguments, "name"); name != "" {
		input.TagSpecifications = []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeVpc,
			Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}},
		}}
	}
	out, err := client.CreateVpc(ctx, input)
	if err != nil {
		return fail(err)
	}
	vpcID := ""
	if out.Vpc != nil {
		vpcID = aws.ToString(out.Vpc.VpcId)
	}
	for _, attr := range []ec2types.VpcAttributeName{ec2types.VpcAttributeNameEnableDnsSupport, ec2types.VpcAttributeNameEnableDnsHostnames} {
		modify := &ec2.ModifyVpcAttributeInput{VpcId: aws.String(vpcID)}
		if attr == ec2types.VpcAttributeNameEnableDnsSupport {
			modify.EnableDnsSupport = &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}
		} else {
			modify.EnableDnsHostnames = &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}
		}
		if _, err := client.ModifyVpcAttribute(ctx, modify); err != nil {
			return fail(err)
		}
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"vpc_id":     vpcID,
		"cidr_block": cidr,
	}), nil
}

func (s *Service) handleListSubnets(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: vpcFilter(mcp.AsString(req.Arguments, "vpc_id")),
	})
	if err != nil {
		return fail(err)
	}
	var subnets []map[string]any
	for _, subnet := range out.Subnets {
		subnets = append(subnets, map[string]any{
			"subnet_id":         aws.ToString(subnet.SubnetId),
			"vpc_id":            aws.ToString(subnet.VpcId),
			"cidr_block":        aws.ToString(subnet.CidrBlock),
			"availability_zone": aws.ToString(subnet.AvailabilityZone),
			"available_ips":     aws.ToInt32(subnet.AvailableIpAddressCount),
			"public":            aws.ToBool(subnet.MapPublicIpOnLaunch),
		})
	}
	return s.ok(map[string]any{
		"region":  usedRegion,
		"subnets": subnets,
		"count":   len(subnets),
	}), nil
}

func (s *Service) handleListSecurityGroups(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &ec2.DescribeSecurityGroupsInput{
		Filters: vpcFilter(mcp.AsString(req.Arguments, "vpc_id")),
	}
	var groups []map[string]any
	for {
		out, err := client.DescribeSecurityGroups(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, group := range out.SecurityGroups {
			groups = append(groups, map[string]any{
				"group_id":    aws.ToString(group.GroupId),
				"group_name":  aws.ToString(group.GroupName),
				"description": aws.ToString(group.Description),
				"vpc_id":      aws.ToString(group.VpcId),
				"ingress":     len(group.IpPermissions),
				"egress":      len(group.IpPermissionsEgress),
			})
		}
		if limit > 0 && len(groups) >= limit {
			groups = groups[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":          usedRegion,
		"security_groups": groups,
		"count":           len(groups),
	}), nil
}

func (s *Service) handleCreateSecurityGroup(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "group_name")
	description := mcp.AsString(req.Arguments, "description")
	vpcID := mcp.AsString(req.Arguments, "vpc_id")
	if name == "" || description == "" || vpcID == "" {
		return fail(errors.New("group_name, description and vpc_id are required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
		VpcId:       aws.String(vpcID),
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"group_id":   aws.ToString(out.GroupId),
		"group_name": name,
		"vpc_id":     vpcID,
	}), nil
}

func (s *Service) handleListRouteTables(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: vpcFilter(mcp.AsString(req.Arguments, "vpc_id")),
	})
	if err != nil {
		return fail(err)
	}
	var tables []map[string]any
	for _, table := range out.RouteTables {
		var routes []map[string]any
		for _, route := range table.Routes {
			routes = append(routes, map[string]any{
				"destination": aws.ToString(route.DestinationCidrBlock),
				"gateway_id":  aws.ToString(route.GatewayId),
				"state":       string(route.State),
			})
		}
		tables = append(tables, map[string]any{
			"route_table_id": aws.ToString(table.RouteTableId),
			"vpc_id":         aws.ToString(table.VpcId),
			"routes":         routes,
			"associations":   len(table.Associations),
		})
	}
	return s.ok(map[string]any{
		"region":       usedRegion,
		"route_tables": tables,
		"count":        len(tables),
	}), nil
}

func (s *Service) handleListNATGateways(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: vpcFilter(mcp.AsString(req.Arguments, "vpc_id")),
	})
	if err != nil {
		return fail(err)
	}
	var gateways []map[string]any
	for _, gw := range out.NatGateways {
		gateways = append(gateways, map[string]any{
			"nat_gateway_id": aws.ToString(gw.NatGatewayId),
			"vpc_id":         aws.ToString(gw.VpcId),
			"subnet_id":      aws.ToString(gw.SubnetId),
			"state":          string(gw.State),
			"created":        gw.CreateTime,
		})
	}
	return s.ok(map[string]any{
		"region":       usedRegion,
		"nat_gateways": gateways,
		"count":        len(gateways),
	}), nil
}

func (s *Service) handleListResolverEndpoints(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.resolverClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.ListResolverEndpoints(ctx, &route53resolver.ListResolverEndpointsInput{})
	if err != nil {
		return fail(err)
	}
	var endpoints []map[string]any
	for _, endpoint := range out.ResolverEndpoints {
		endpoints = append(endpoints, map[string]any{
			"id":        aws.ToString(endpoint.Id),
			"name":      aws.ToString(endpoint.Name),
			"direction": string(endpoint.Direction),
			"status":    string(endpoint.Status),
			"ip_count":  aws.ToInt32(endpoint.IpAddressCount),
		})
	}
	return s.ok(map[string]any{
		"region":             usedRegion,
		"resolver_endpoints": endpoints,
		"count":              len(endpoints),
	}), nil
}

func (s *Service) handleListResolverRules(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.resolverClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.ListResolverRules(ctx, &route53resolver.ListResolverRulesInput{})
	if err != nil {
		return fail(err)
	}
	var rules []map[string]any
	for _, rule := range out.ResolverRules {
		rules = append(rules, map[string]any{
			"id":          aws.ToString(rule.Id),
			"name":        aws.ToString(rule.Name),
			"domain_name": aws.ToString(rule.DomainName),
			"rule_type":   string(rule.RuleType),
			"status":      string(rule.Status),
		})
	}
	return s.ok(map[string]any{
		"region":         usedRegion,
		"resolver_rules": rules,
		"count":          len(rules),
	}), nil
}

func summarizeVPC(vpc ec2types.Vpc) map[string]any {
	name := ""
	for _, tag := range vpc.Tags {
		if aws.ToString(tag.Key) == "Name" {
			name = aws.ToString(tag.Value)
		}
	}
	return map[string]any{
		"vpc_id":     aws.ToString(vpc.VpcId),
		"name":       name,
		"cidr_block": aws.ToString(vpc.CidrBlock),
		"state":      string(vpc.State),
		"is_default": aws.ToBool(vpc.IsDefault),
	}
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
