package containers

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"awspanel/internal/mcp"
)

func (s *Service) eksSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "eks_list_clusters",
			Description: "List EKS cluster names.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListEKSClusters,
		},
		{
			Name:        "eks_describe_cluster",
			Description: "Describe an EKS cluster.",
			Parameters: mcp.ParamSchema{
				"cluster_name": {Type: "string", Required: true},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeEKSCluster,
		},
		{
			Name:        "eks_list_nodegroups",
			Description: "List node groups for an EKS cluster.",
			Parameters: mcp.ParamSchema{
				"cluster_name": {Type: "string", Required: true},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListNodegroups,
		},
	}
}

func (s *Service) handleListEKSClusters(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.eksClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	var names []string
	input := &eks.ListClustersInput{}
	for {
		out, err := client.ListClusters(ctx, input)
		if err != nil {
			return fail(err)
		}
		names = append(names, out.Clusters...)
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"clusters": names,
		"count":    len(names),
	}), nil
}

func (s *Service) handleDescribeEKSCluster(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "cluster_name")
	if name == "" {
		return fail(errors.New("cluster_name is required"))
	}
	client, usedRegion, err := s.eksClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{"region": usedRegion}
	if cluster := out.Cluster; cluster != nil {
		info := map[string]any{
			"name":     aws.ToString(cluster.Name),
			"arn":      aws.ToString(cluster.Arn),
			"status":   string(cluster.Status),
			"version":  aws.ToString(cluster.Version),
			"endpoint": aws.ToString(cluster.Endpoint),
			"created":  cluster.CreatedAt,
		}
		if vpc := cluster.ResourcesVpcConfig; vpc != nil {
			info["vpc_id"] = aws.ToString(vpc.VpcId)
			info["subnet_ids"] = vpc.SubnetIds
		}
		data["cluster"] = info
	}
	return s.ok(data), nil
}

func (s *Service) handleListNodegroups(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "cluster_name")
	if name == "" {
		return fail(errors.New("cluster_name is required"))
	}
	client, usedRegion, err := s.eksClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	var groups []map[string]any
	input := &eks.ListNodegroupsInput{ClusterName: aws.String(name)}
	for {
		out, err := client.ListNodegroups(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, group := range out.Nodegroups {
			described, err := client.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
				ClusterName:   aws.String(name),
				NodegroupName: aws.String(group),
			})
			if err != nil {
				return fail(err)
			}
			entry := map[string]any{"nodegroup_name": group}
			if ng := described.Nodegroup; ng != nil {
				entry["status"] = string(ng.Status)
				entry["instance_types"] = ng.InstanceTypes
				entry["capacity_type"] = string(ng.CapacityType)
				if scaling := ng.ScalingConfig; scaling != nil {
					entry["desired_size"] = aws.ToInt32(scaling.DesiredSize)
					entry["min_size"] = aws.ToInt32(scaling.MinSize)
					entry["max_size"] = aws.ToInt32(scaling.MaxSize)
				}
			}
			groups = append(groups, entry)
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":       usedRegion,
		"cluster_name": name,
		"nodegroups":   groups,
		"count":        len(groups),
	}), nil
}
