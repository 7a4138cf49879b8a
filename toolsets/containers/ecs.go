package containers

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"awspanel/internal/mcp"
)

func (s *Service) handleListECSClusters(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ecsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	var arns []string
	input := &ecs.ListClustersInput{}
	for {
		out, err := client.ListClusters(ctx, input)
		if err != nil {
			return fail(err)
		}
		arns = append(arns, out.ClusterArns...)
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	clusters := []map[string]any{}
	if len(arns) > 0 {
		described, err := client.DescribeClusters(ctx, &ecs.DescribeClustersInput{Clusters: arns})
		if err != nil {
			return fail(err)
		}
		for _, cluster := range described.Clusters {
			clusters = append(clusters, summarizeCluster(cluster))
		}
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"clusters": clusters,
		"count":    len(clusters),
	}), nil
}

func (s *Service) handleDescribeECSCluster(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "cluster_name")
	if name == "" {
		return fail(errors.New("cluster_name is required"))
	}
	client, usedRegion, err := s.ecsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeClusters(ctx, &ecs.DescribeClustersInput{Clusters: []string{name}})
	if err != nil {
		return fail(err)
	}
	if len(out.Clusters) == 0 {
		return fail(errors.New("cluster not found: " + name))
	}
	return s.ok(map[string]any{
		"region":  usedRegion,
		"cluster": summarizeCluster(out.Clusters[0]),
	}), nil
}

func (s *Service) handleListECSServices(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	cluster := mcp.AsString(req.Arguments, "cluster_name")
	if cluster == "" {
		return fail(errors.New("cluster_name is required"))
	}
	client, usedRegion, err := s.ecsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	var arns []string
	input := &ecs.ListServicesInput{Cluster: aws.String(cluster)}
	for {
		out, err := client.ListServices(ctx, input)
		if err != nil {
			return fail(err)
		}
		arns = append(arns, out.ServiceArns...)
		if limit > 0 && len(arns) >= limit {
			arns = arns[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	services := []map[string]any{}
	// DescribeServices takes at most ten service ARNs per call.
	for start := 0; start < len(arns); start += 10 {
		end := start + 10
		if end > len(arns) {
			end = len(arns)
		}
		described, err := client.DescribeServices(ctx, &ecs.DescribeServicesInput{
			Cluster:  aws.String(cluster),
			Services: arns[start:end],
		})
		if err != nil {
			return fail(err)
		}
		for _, service := range described.Services {
			services = append(services, map[string]any{
				"service_name":    aws.ToString(service.ServiceName),
				"service_arn":     aws.ToString(service.ServiceArn),
				"status":          aws.ToString(service.Status),
				"desired_count":   service.DesiredCount,
				"running_count":   service.RunningCount,
				"pending_count":   service.PendingCount,
				"launch_type":     string(service.LaunchType),
				"task_definition": aws.ToString(service.TaskDefinition),
			})
		}
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"cluster":  cluster,
		"services": services,
		"count":    len(services),
	}), nil
}

func (s *Service) handleListECSTasks(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	cluster := mcp.AsString(req.Arguments, "cluster_name")
	if cluster == "" {
		return fail(errors.New("cluster_name is required"))
	}
	client, usedRegion, err := s.ecsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &ecs.ListTasksInput{Cluster: aws.String(cluster)}
	if status := mcp.AsString(req.Arguments, "status"); status != "" {
		input.DesiredStatus = ecstypes.DesiredStatus(status)
	}
	var arns []string
	for {
		out, err := client.ListTasks(ctx, input)
		if err != nil {
			return fail(err)
		}
		arns = append(arns, out.TaskArns...)
		if limit > 0 && len(arns) >= limit {
			arns = arns[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	tasks := []map[string]any{}
	for start := 0; start < len(arns); start += 100 {
		end := start + 100
		if end > len(arns) {
			end = len(arns)
		}
		described, err := client.DescribeTasks(ctx, &ecs.DescribeTasksInput{
			Cluster: aws.String(cluster),
			Tasks:   arns[start:end],
		})
		if err != nil {
			return fail(err)
		}
		for _, task := range described.Tasks {
			tasks = append(tasks, map[string]any{
				"task_arn":        aws.ToString(task.TaskArn),
				"task_definition": aws.ToString(task.TaskDefinitionArn),
				"last_status":     aws.ToString(task.LastStatus),
				"desired_status":  aws.ToString(task.DesiredStatus),
				"launch_type":     string(task.LaunchType),
				"started_at":      task.StartedAt,
			})
		}
	}
	return s.ok(map[string]any{
		"region":  usedRegion,
		"cluster": cluster,
		"tasks":   tasks,
		"count":   len(tasks),
	}), nil
}

func (s *Service) handleListRepositories(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ecrClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &ecr.DescribeRepositoriesInput{}
	var repos []map[string]any
	for {
		out, err := client.DescribeRepositories(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, repo := range out.Repositories {
			repos = append(repos, map[string]any{
				"repository_name": aws.ToString(repo.RepositoryName),
				"repository_uri":  aws.ToString(repo.RepositoryUri),
				"repository_arn":  aws.ToString(repo.RepositoryArn),
				"created":         repo.CreatedAt,
			})
		}
		if limit > 0 && len(repos) >= limit {
			repos = repos[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":       usedRegion,
		"repositories": repos,
		"count":        len(repos),
	}), nil
}

func (s *Service) handleListImages(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	repo := mcp.AsString(req.Arguments, "repository_name")
	if repo == "" {
		return fail(errors.New("repository_name is required"))
	}
	client, usedRegion, err := s.ecrClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &ecr.DescribeImagesInput{RepositoryName: aws.String(repo)}
	var images []map[string]any
	for {
		out, err := client.DescribeImages(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, image := range out.ImageDetails {
			images = append(images, map[string]any{
				"image_digest": aws.ToString(image.ImageDigest),
				"image_tags":   image.ImageTags,
				"size_bytes":   aws.ToInt64(image.ImageSizeInBytes),
				"pushed_at":    image.ImagePushedAt,
			})
		}
		if limit > 0 && len(images) >= limit {
			images = images[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":          usedRegion,
		"repository_name": repo,
		"images":          images,
		"count":           len(images),
	}), nil
}

func summarizeCluster(cluster ecstypes.Cluster) map[string]any {
	return map[string]any{
		"cluster_name":               aws.ToString(cluster.ClusterName),
		"cluster_arn":                aws.ToString(cluster.ClusterArn),
		"status":                     aws.ToString(cluster.Status),
		"active_services":            cluster.ActiveServicesCount,
		"running_tasks":              cluster.RunningTasksCount,
		"pending_tasks":              cluster.PendingTasksCount,
		"registered_container_insts": cluster.RegisteredContainerInstancesCount,
	}
}
