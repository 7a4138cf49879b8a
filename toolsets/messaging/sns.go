package messaging

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"awspanel/internal/mcp"
)

func (s *Service) snsSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "sns_list_topics",
			Description: "List SNS topic ARNs.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListTopics,
		},
		{
			Name:        "sns_create_topic",
			Description: "Create an SNS topic.",
			Parameters: mcp.ParamSchema{
				"topic_name": {Type: "string", Required: true},
				"region":     {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateTopic,
		},
		{
			Name:        "sns_publish",
			Description: "Publish a message to an SNS topic.",
			Parameters: mcp.ParamSchema{
				"topic_arn": {Type: "string", Required: true},
				"message":   {Type: "string", Required: true},
				"subject":   {Type: "string"},
				"region":    {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handlePublish,
		},
		{
			Name:        "sns_delete_topic",
			Description: "Delete an SNS topic.",
			Parameters: mcp.ParamSchema{
				"topic_arn": {Type: "string", Required: true},
				"region":    {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteTopic,
		},
	}
}

func (s *Service) handleListTopics(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.snsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	var arns []string
	input := &sns.ListTopicsInput{}
	for {
		out, err := client.ListTopics(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, topic := range out.Topics {
			arns = append(arns, aws.ToString(topic.TopicArn))
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"topics": arns,
		"count":  len(arns),
	}), nil
}

func (s *Service) handleCreateTopic(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "topic_name")
	if name == "" {
		return fail(errors.New("topic_name is required"))
	}
	client, usedRegion, err := s.snsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.CreateTopic(ctx, &sns.CreateTopicInput{Name: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"topic_name": name,
		"topic_arn":  aws.ToString(out.TopicArn),
	}), nil
}

func (s *Service) handlePublish(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	arn := mcp.AsString(req.Arguments, "topic_arn")
	message := mcp.AsString(req.Arguments, "message")
	if arn == "" || message == "" {
		return fail(errors.New("topic_arn and message are required"))
	}
	client, usedRegion, err := s.snsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &sns.PublishInput{
		TopicArn: aws.String(arn),
		Message:  aws.String(message),
	}
	if subject := mcp.AsString(req.Arguments, "subject"); subject != "" {
		input.Subject = aws.String(subject)
	}
	out, err := client.Publish(ctx, input)
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"topic_arn":  arn,
		"message_id": aws.ToString(out.MessageId),
	}), nil
}

func (s *Service) handleDeleteTopic(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	arn := mcp.AsString(req.Arguments, "topic_arn")
	if arn == "" {
		return fail(errors.New("topic_arn is required"))
	}
	client, usedRegion, err := s.snsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteTopic(ctx, &sns.DeleteTopicInput{TopicArn: aws.String(arn)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"topic_arn": arn,
		"deleted":   true,
	}), nil
}
