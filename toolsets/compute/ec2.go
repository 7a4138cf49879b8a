package compute

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"awspanel/internal/mcp"
)

const (
	defaultInstanceType = "t2.micro"
	amazonLinuxPattern  = "al2023-ami-2023*-x86_64"
)

func (s *Service) handleListInstances(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	region := mcp.AsString(req.Arguments, "region")
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	client, usedRegion, err := s.ec2Client(ctx, region)
	if err != nil {
		return fail(err)
	}
	input := &ec2.DescribeInstancesInput{Filters: ec2Filters(req.Arguments)}
	if state := mcp.AsString(req.Arguments, "state"); state != "" {
		input.Filters = append(input.Filters, ec2types.Filter{
			Name:   aws.String("instance-state-name"),
			Values: []string{state},
		})
	}
	var instances []map[string]any
	for {
		out, err := client.DescribeInstances(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, reservation := range out.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, summarizeInstance(inst))
			}
		}
		if limit > 0 && len(instances) >= limit {
			instances = instances[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"instances": instances,
		"count":     len(instances),
	}), nil
}

func (s *Service) handleGetInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	instanceID := mcp.AsString(req.Arguments, "instance_id")
	if instanceID == "" {
		return fail(errors.New("instance_id is required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{instanceID}})
	if err != nil {
		return fail(err)
	}
	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			if aws.ToString(inst.InstanceId) == instanceID {
				return s.ok(map[string]any{
					"region":   usedRegion,
					"instance": summarizeInstance(inst),
				}), nil
			}
		}
	}
	return fail(fmt.Errorf("instance %s not found", instanceID))
}

func (s *Service) handleCreateInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	imageID := mcp.AsString(req.Arguments, "image_id")
	if imageID == "" {
		imageID, err = latestAmazonLinuxAMI(ctx, client)
		if err != nil {
			return fail(fmt.Errorf("resolve default AMI: %w", err))
		}
	}
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(imageID),
		InstanceType: ec2types.InstanceType(mcp.AsStringDefault(req.Arguments, "instance_type", defaultInstanceType)),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
	}
	if keyName := mcp.AsString(req.Arguments, "key_name"); keyName != "" {
		input.KeyName = aws.String(keyName)
	}
	if groups := mcp.AsStringSlice(req.Arguments, "security_group_ids"); len(groups) > 0 {
		input.SecurityGroupIds = groups
	}
	if subnet := mcp.AsString(req.Arguments, "subnet_id"); subnet != "" {
		input.SubnetId = aws.String(subnet)
	}
	if name := mcp.AsString(req.Arguments, "name"); name != "" {
		input.TagSpecifications = []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeInstance,
			Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}},
		}}
	}
	out, err := client.RunInstances(ctx, input)
	if err != nil {
		return fail(err)
	}
	var ids []string
	for _, inst := range out.Instances {
		ids = append(ids, aws.ToString(inst.InstanceId))
	}
	return s.ok(map[string]any{
		"region":       usedRegion,
		"instance_ids": ids,
		"image_id":     imageID,
	}), nil
}

// latestAmazonLinuxAMI resolves the newest Amazon Linux 2023 x86_64 image
// owned by amazon, the launch default when the caller names no AMI.
func latestAmazonLinuxAMI(ctx context.Context, client *ec2.Client) (string, error) {
	out, err := client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"amazon"},
		Filters: []ec2types.Filter{
			{Name: aws.String("name"), Values: []string{amazonLinuxPattern}},
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return "", err
	}
	if len(out.Images) == 0 {
		return "", errors.New("no Amazon Linux 2023 images available")
	}
	images := out.Images
	sort.Slice(images, func(i, j int) bool {
		return aws.ToString(images[i].CreationDate) > aws.ToString(images[j].CreationDate)
	})
	return aws.ToString(images[0].ImageId), nil
}

func (s *Service) handleStartInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	return s.changeInstanceState(ctx, req, "start")
}

func (s *Service) handleStopInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	return s.changeInstanceState(ctx, req, "stop")
}

func (s *Service) handleTerminateInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	return s.changeInstanceState(ctx, req, "terminate")
}

func (s *Service) changeInstanceState(ctx context.Context, req mcp.ToolRequest, action string) (mcp.ToolResult, error) {
	instanceID := mcp.AsString(req.Arguments, "instance_id")
	if instanceID == "" {
		return fail(errors.New("instance_id is required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	var current, previous string
	switch action {
	case "start":
		out, err := client.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{instanceID}})
		if err != nil {
			return fail(err)
		}
		if len(out.StartingInstances) > 0 {
			current = string(out.StartingInstances[0].CurrentState.Name)
			previous = string(out.StartingInstances[0].PreviousState.Name)
		}
	case "stop":
		out, err := client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{instanceID}})
		if err != nil {
			return fail(err)
		}
		if len(out.StoppingInstances) > 0 {
			current = string(out.StoppingInstances[0].CurrentState.Name)
			previous = string(out.StoppingInstances[0].PreviousState.Name)
		}
	case "terminate":
		out, err := client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{instanceID}})
		if err != nil {
			return fail(err)
		}
		if len(out.TerminatingInstances) > 0 {
			current = string(out.TerminatingInstances[0].CurrentState.Name)
			previous = string(out.TerminatingInstances[0].PreviousState.Name)
		}
	}
	return s.ok(map[string]any{
		"region":         usedRegion,
		"instance_id":    instanceID,
		"current_state":  current,
		"previous_state": previous,
	}), nil
}

func (s *Service) handleModifySecurityGroups(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	instanceID := mcp.AsString(req.Arguments, "instance_id")
	groups := mcp.AsStringSlice(req.Arguments, "security_group_ids")
	if instanceID == "" || len(groups) == 0 {
		return fail(errors.New("instance_id and security_group_ids are required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	_, err = client.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		Groups:     groups,
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":             usedRegion,
		"instance_id":        instanceID,
		"security_group_ids": groups,
	}), nil
}

func (s *Service) handleSearchAMIs(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 50)
	input := &ec2.DescribeImagesInput{Filters: ec2Filters(req.Arguments)}
	if owners := mcp.AsStringSlice(req.Arguments, "owners"); len(owners) > 0 {
		input.Owners = owners
	}
	out, err := client.DescribeImages(ctx, input)
	if err != nil {
		return fail(err)
	}
	images := out.Images
	sort.Slice(images, func(i, j int) bool {
		return aws.ToString(images[i].CreationDate) > aws.ToString(images[j].CreationDate)
	})
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}
	var summaries []map[string]any
	for _, image := range images {
		summaries = append(summaries, map[string]any{
			"image_id":      aws.ToString(image.ImageId),
			"name":          aws.ToString(image.Name),
			"description":   aws.ToString(image.Description),
			"architecture":  string(image.Architecture),
			"state":         string(image.State),
			"creation_date": aws.ToString(image.CreationDate),
			"owner_id":      aws.ToString(image.OwnerId),
		})
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"images": summaries,
		"count":  len(summaries),
	}), nil
}

func (s *Service) handleCreateAMI(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	instanceID := mcp.AsString(req.Arguments, "instance_id")
	name := mcp.AsString(req.Arguments, "name")
	if instanceID == "" || name == "" {
		return fail(errors.New("instance_id and name are required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &ec2.CreateImageInput{
		InstanceId: aws.String(instanceID),
		Name:       aws.String(name),
	}
	if description := mcp.AsString(req.Arguments, "description"); description != "" {
		input.Description = aws.String(description)
	}
	out, err := client.CreateImage(ctx, input)
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"image_id": aws.ToString(out.ImageId),
		"name":     name,
	}), nil
}

func (s *Service) handleCreateLaunchTemplate(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "name")
	imageID := mcp.AsString(req.Arguments, "image_id")
	if name == "" || imageID == "" {
		return fail(errors.New("name and image_id are required"))
	}
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	data := &ec2types.RequestLaunchTemplateData{
		ImageId:      aws.String(imageID),
		InstanceType: ec2types.InstanceType(mcp.AsStringDefault(req.Arguments, "instance_type", defaultInstanceType)),
	}
	if keyName := mcp.AsString(req.Arguments, "key_name"); keyName != "" {
		data.KeyName = aws.String(keyName)
	}
	if groups := mcp.AsStringSlice(req.Arguments, "security_group_ids"); len(groups) > 0 {
		data.SecurityGroupIds = groups
	}
	out, err := client.CreateLaunchTemplate(ctx, &ec2.CreateLaunchTemplateInput{
		LaunchTemplateName: aws.String(name),
		LaunchTemplateData: data,
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":             usedRegion,
		"launch_template_id": aws.ToString(out.LaunchTemplate.LaunchTemplateId),
		"name":               aws.ToString(out.LaunchTemplate.LaunchTemplateName),
	}), nil
}

func (s *Service) handleListLaunchTemplates(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &ec2.DescribeLaunchTemplatesInput{}
	var templates []map[string]any
	for {
		out, err := client.DescribeLaunchTemplates(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, tpl := range out.LaunchTemplates {
			templates = append(templates, map[string]any{
				"launch_template_id": aws.ToString(tpl.LaunchTemplateId),
				"name":               aws.ToString(tpl.LaunchTemplateName),
				"default_version":    aws.ToInt64(tpl.DefaultVersionNumber),
				"latest_version":     aws.ToInt64(tpl.LatestVersionNumber),
				"created":            tpl.CreateTime,
			})
		}
		if limit > 0 && len(templates) >= limit {
			templates = templates[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":           usedRegion,
		"launch_templates": templates,
		"count":            len(templates),
	}), nil
}

func (s *Service) handleCreateASG(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "name")
	templateName := mcp.AsString(req.Arguments, "launch_template_name")
	if name == "" || templateName == "" {
		return fail(errors.New("name and launch_template_name are required"))
	}
	client, usedRegion, err := s.asgClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	minSize := mcp.AsInt(req.Arguments, "min_size", 1)
	maxSize := mcp.AsInt(req.Arguments, "max_size", 1)
	input := &autoscaling.CreateAutoScalingGroupInput{
		AutoScalingGroupName: aws.String(name),
		MinSize:              aws.Int32(int32(minSize)),
		MaxSize:              aws.Int32(int32(maxSize)),
		LaunchTemplate: &asgtypes.LaunchTemplateSpecification{
			LaunchTemplateName: aws.String(templateName),
		},
	}
	if desired := mcp.AsInt(req.Arguments, "desired_capacity", 0); desired > 0 {
		input.DesiredCapacity = aws.Int32(int32(desired))
	}
	if subnets := mcp.AsStringSlice(req.Arguments, "subnet_ids"); len(subnets) > 0 {
		joined := subnets[0]
		for _, subnet := range subnets[1:] {
			joined += "," + subnet
		}
		input.VPCZoneIdentifier = aws.String(joined)
	}
	if _, err := client.CreateAutoScalingGroup(ctx, input); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"name":     name,
		"min_size": minSize,
		"max_size": maxSize,
	}), nil
}

func (s *Service) handleListASGs(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.asgClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &autoscaling.DescribeAutoScalingGroupsInput{}
	var groups []map[string]any
	for {
		out, err := client.DescribeAutoScalingGroups(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, group := range out.AutoScalingGroups {
			groups = append(groups, map[string]any{
				"name":             aws.ToString(group.AutoScalingGroupName),
				"min_size":         aws.ToInt32(group.MinSize),
				"max_size":         aws.ToInt32(group.MaxSize),
				"desired_capacity": aws.ToInt32(group.DesiredCapacity),
				"instance_count":   len(group.Instances),
				"created":          group.CreatedTime,
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
		"region":             usedRegion,
		"autoscaling_groups": groups,
		"count":              len(groups),
	}), nil
}

func (s *Service) handleListLoadBalancers(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.elbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &elasticloadbalancingv2.DescribeLoadBalancersInput{}
	var lbs []map[string]any
	for {
		out, err := client.DescribeLoadBalancers(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, lb := range out.LoadBalancers {
			lbs = append(lbs, map[string]any{
				"name":     aws.ToString(lb.LoadBalancerName),
				"arn":      aws.ToString(lb.LoadBalancerArn),
				"dns_name": aws.ToString(lb.DNSName),
				"type":     string(lb.Type),
				"scheme":   string(lb.Scheme),
				"vpc_id":   aws.ToString(lb.VpcId),
				"state":    stateCode(lb.State),
			})
		}
		if limit > 0 && len(lbs) >= limit {
			lbs = lbs[:limit]
			break
		}
		if aws.ToString(out.NextMarker) == "" {
			break
		}
		input.Marker = out.NextMarker
	}
	return s.ok(map[string]any{
		"region":         usedRegion,
		"load_balancers": lbs,
		"count":          len(lbs),
	}), nil
}

func stateCode(state *elbtypes.LoadBalancerState) string {
	if state == nil {
		return ""
	}
	return string(state.Code)
}

func (s *Service) handleListTargetGroups(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.elbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &elasticloadbalancingv2.DescribeTargetGroupsInput{}
	if lbArn := mcp.AsString(req.Arguments, "load_balancer_arn"); lbArn != "" {
		input.LoadBalancerArn = aws.String(lbArn)
	}
	var groups []map[string]any
	for {
		out, err := client.DescribeTargetGroups(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, group := range out.TargetGroups {
			groups = append(groups, map[string]any{
				"name":     aws.ToString(group.TargetGroupName),
				"arn":      aws.ToString(group.TargetGroupArn),
				"protocol": string(group.Protocol),
				"port":     aws.ToInt32(group.Port),
				"vpc_id":   aws.ToString(group.VpcId),
			})
		}
		if limit > 0 && len(groups) >= limit {
			groups = groups[:limit]
			break
		}
		if aws.ToString(out.NextMarker) == "" {
			break
		}
		input.Marker = out.NextMarker
	}
	return s.ok(map[string]any{
		"region":        usedRegion,
		"target_groups": groups,
		"count":         len(groups),
	}), nil
}

func (s *Service) handleCreateTargetGroup(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "name")
	vpcID := mcp.AsString(req.Arguments, "vpc_id")
	if name == "" || vpcID == "" {
		return fail(errors.New("name and vpc_id are required"))
	}
	client, usedRegion, err := s.elbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.CreateTargetGroup(ctx, &elasticloadbalancingv2.CreateTargetGroupInput{
		Name:     aws.String(name),
		VpcId:    aws.String(vpcID),
		Protocol: elbtypes.ProtocolEnum(mcp.AsStringDefault(req.Arguments, "protocol", "HTTP")),
		Port:     aws.Int32(int32(mcp.AsInt(req.Arguments, "port", 80))),
	})
	if err != nil {
		return fail(err)
	}
	var arn string
	if len(out.TargetGroups) > 0 {
		arn = aws.ToString(out.TargetGroups[0].TargetGroupArn)
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"name":   name,
		"arn":    arn,
	}), nil
}

func summarizeInstance(inst ec2types.Instance) map[string]any {
	var sgIDs []string
	for _, sg := range inst.SecurityGroups {
		sgIDs = append(sgIDs, aws.ToString(sg.GroupId))
	}
	name := ""
	for _, tag := range inst.Tags {
		if aws.ToString(tag.Key) == "Name" {
			name = aws.ToString(tag.Value)
		}
	}
	state := ""
	if inst.State != nil {
		state = string(inst.State.Name)
	}
	az := ""
	if inst.Placement != nil {
		az = aws.ToString(inst.Placement.AvailabilityZone)
	}
	return map[string]any{
		"instance_id":        aws.ToString(inst.InstanceId),
		"name":               name,
		"state":              state,
		"instance_type":      string(inst.InstanceType),
		"image_id":           aws.ToString(inst.ImageId),
		"vpc_id":             aws.ToString(inst.VpcId),
		"subnet_id":          aws.ToString(inst.SubnetId),
		"availability_zone":  az,
		"private_ip":         aws.ToString(inst.PrivateIpAddress),
		"public_ip":          aws.ToString(inst.PublicIpAddress),
		"key_name":           aws.ToString(inst.KeyName),
		"security_group_ids": sgIDs,
		"launch_time":        inst.LaunchTime,
	}
}
