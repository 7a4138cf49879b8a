package management

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"awspanel/internal/mcp"
)

func (s *Service) handleListAlarms(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.cwClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &cloudwatch.DescribeAlarmsInput{}
	if state := mcp.AsString(req.Arguments, "state"); state != "" {
		input.StateValue = cwtypes.StateValue(state)
	}
	var alarms []map[string]any
	for {
		out, err := client.DescribeAlarms(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, alarm := range out.MetricAlarms {
			alarms = append(alarms, map[string]any{
				"alarm_name":   aws.ToString(alarm.AlarmName),
				"state":        string(alarm.StateValue),
				"state_reason": aws.ToString(alarm.StateReason),
				"metric_name":  aws.ToString(alarm.MetricName),
				"namespace":    aws.ToString(alarm.Namespace),
				"statistic":    string(alarm.Statistic),
				"threshold":    aws.ToFloat64(alarm.Threshold),
			})
		}
		if limit > 0 && len(alarms) >= limit {
			alarms = alarms[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"alarms": alarms,
		"count":  len(alarms),
	}), nil
}

func (s *Service) handleMetricStatistics(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	namespace := mcp.AsString(req.Arguments, "namespace")
	metric := mcp.AsString(req.Arguments, "metric_name")
	if namespace == "" || metric == "" {
		return fail(errors.New("namespace and metric_name are required"))
	}
	client, usedRegion, err := s.cwClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	statistic := mcp.AsStringDefault(req.Arguments, "statistic", "Average")
	hours := mcp.AsInt(req.Arguments, "hours", 1)
	if hours <= 0 {
		hours = 1
	}
	period := mcp.AsInt(req.Arguments, "period", 300)
	if period <= 0 {
		period = 300
	}
	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	var dimensions []cwtypes.Dimension
	for name, value := range mcp.AsMap(req.Arguments, "dimensions") {
		text, ok := value.(string)
		if !ok {
			continue
		}
		dimensions = append(dimensions, cwtypes.Dimension{
			Name:  aws.String(name),
			Value: aws.String(text),
		})
	}

	out, err := client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metric),
		Dimensions: dimensions,
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(period)),
		Statistics: []cwtypes.Statistic{cwtypes.Statistic(statistic)},
	})
	if err != nil {
		return fail(err)
	}
	points := []map[string]any{}
	for _, dp := range out.Datapoints {
		point := map[string]any{
			"timestamp": dp.Timestamp,
			"unit":      string(dp.Unit),
		}
		switch statistic {
		case "Sum":
			point["value"] = aws.ToFloat64(dp.Sum)
		case "Minimum":
			point["value"] = aws.ToFloat64(dp.Minimum)
		case "Maximum":
			point["value"] = aws.ToFloat64(dp.Maximum)
		case "SampleCount":
			point["value"] = aws.ToFloat64(dp.SampleCount)
		default:
			point["value"] = aws.ToFloat64(dp.Average)
		}
		points = append(points, point)
	}
	return s.ok(map[string]any{
		"region":      usedRegion,
		"namespace":   namespace,
		"metric_name": metric,
		"statistic":   statistic,
		"start_time":  start,
		"end_time":    end,
		"datapoints":  points,
		"count":       len(points),
	}), nil
}

func (s *Service) handleListLogGroups(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.logsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &cloudwatchlogs.DescribeLogGroupsInput{}
	if prefix := mcp.AsString(req.Arguments, "prefix"); prefix != "" {
		input.LogGroupNamePrefix = aws.String(prefix)
	}
	var groups []map[string]any
	for {
		out, err := client.DescribeLogGroups(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, group := range out.LogGroups {
			groups = append(groups, map[string]any{
				"log_group_name": aws.ToString(group.LogGroupName),
				"arn":            aws.ToString(group.Arn),
				"stored_bytes":   aws.ToInt64(group.StoredBytes),
				"retention_days": aws.ToInt32(group.RetentionInDays),
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
		"region":     usedRegion,
		"log_groups": groups,
		"count":      len(groups),
	}), nil
}
