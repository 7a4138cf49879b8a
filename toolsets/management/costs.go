package management

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"awspanel/internal/mcp"
)

const costDateLayout = "2006-01-02"

func (s *Service) costSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "get_aws_costs",
			Description: "Report unblended cost for the last N days, grouped by service.",
			Parameters: mcp.ParamSchema{
				"days":        {Type: "integer", Description: "Lookback in days, default 30"},
				"granularity": {Type: "string", Enum: []string{"DAILY", "MONTHLY"}},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleGetCosts,
		},
		{
			Name:        "get_cost_forecast",
			Description: "Forecast total cost for the next N days.",
			Parameters: mcp.ParamSchema{
				"days":   {Type: "integer", Description: "Forecast horizon in days, default 30"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleCostForecast,
		},
	}
}

func (s *Service) handleGetCosts(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.costClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	days := mcp.AsInt(req.Arguments, "days", 30)
	if days <= 0 {
		days = 30
	}
	granularity := cetypes.Granularity(mcp.AsStringDefault(req.Arguments, "granularity", "MONTHLY"))
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	out, err := client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format(costDateLayout)),
			End:   aws.String(end.Format(costDateLayout)),
		},
		Granularity: granularity,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	})
	if err != nil {
		return fail(err)
	}
	periods := []map[string]any{}
	for _, result := range out.ResultsByTime {
		period := map[string]any{}
		if result.TimePeriod != nil {
			period["start"] = aws.ToString(result.TimePeriod.Start)
			period["end"] = aws.ToString(result.TimePeriod.End)
		}
		byService := []map[string]any{}
		for _, group := range result.Groups {
			entry := map[string]any{"keys": group.Keys}
			if metric, ok := group.Metrics["UnblendedCost"]; ok {
				entry["amount"] = aws.ToString(metric.Amount)
				entry["unit"] = aws.ToString(metric.Unit)
			}
			byService = append(byService, entry)
		}
		period["groups"] = byService
		periods = append(periods, period)
	}
	return s.ok(map[string]any{
		"region":      usedRegion,
		"start":       start.Format(costDateLayout),
		"end":         end.Format(costDateLayout),
		"granularity": string(granularity),
		"results":     periods,
	}), nil
}

func (s *Service) handleCostForecast(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.costClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	days := mcp.AsInt(req.Arguments, "days", 30)
	if days <= 0 {
		days = 30
	}
	// The forecast window must start no earlier than tomorrow.
	start := time.Now().UTC().AddDate(0, 0, 1)
	end := start.AddDate(0, 0, days)

	out, err := client.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format(costDateLayout)),
			End:   aws.String(end.Format(costDateLayout)),
		},
		Granularity: cetypes.GranularityMonthly,
		Metric:      cetypes.MetricUnblendedCost,
	})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{
		"region": usedRegion,
		"start":  start.Format(costDateLayout),
		"end":    end.Format(costDateLayout),
	}
	if total := out.Total; total != nil {
		data["forecast_amount"] = aws.ToString(total.Amount)
		data["unit"] = aws.ToString(total.Unit)
	}
	return s.ok(data), nil
}
