package messaging

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx       mcp.ToolsetContext
	sqsClient func(context.Context, string) (*sqs.Client, string, error)
	snsClient func(context.Context, string) (*sns.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	specs := []mcp.ToolSpec{
		{
			Name:        "sqs_list_queues",
			Description: "List SQS queue URLs, optionally filtered by name prefix.",
			Parameters: mcp.ParamSchema{
				"prefix": {Type: "string"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListQueues,
		},
		{
			Name:        "sqs_create_queue",
			Description: "Create an SQS queue.",
			Parameters: mcp.ParamSchema{
				"queue_name":                 {Type: "string", Required: true},
				"visibility_timeout":         {Type: "integer", Description: "Seconds a received message stays hidden"},
				"message_retention_period":   {Type: "integer", Description: "Seconds messages are kept"},
				"fifo":                       {Type: "boolean", Description: "Create a FIFO queue"},
				"region":                     {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateQueue,
		},
		{
			Name:        "sqs_send_message",
			Description: "Send a message to an SQS queue.",
			Parameters: mcp.ParamSchema{
				"queue_url":    {Type: "string", Required: true},
				"message_body": {Type: "string", Required: true},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleSendMessage,
		},
		{
			Name:        "sqs_delete_queue",
			Description: "Delete an SQS queue.",
			Parameters: mcp.ParamSchema{
				"queue_url": {Type: "string", Required: true},
				"region":    {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteQueue,
		},
	}
	return append(specs, s.snsSpecs()...)
}

func (s *Service) handleListQueues(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.sqsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &sqs.ListQueuesInput{}
	if prefix := mcp.AsString(req.Arguments, "prefix"); prefix != "" {
		input.QueueNamePrefix = aws.String(prefix)
	}
	var urls []string
	for {
		out, err := client.ListQueues(ctx, input)
		if err != nil {
			return fail(err)
		}
		urls = append(urls, out.QueueUrls...)
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"queues": urls,
		"count":  len(urls),
	}), nil
}

func (s *Service) handleCreateQueue(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "queue_name")
	if name == "" {
		return fail(errors.New("queue_name is required"))
	}
	client, usedRegion, err := s.sqsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	attrs := map[string]string{}
	if timeout := mcp.AsInt(req.Arguments, "visibility_timeout", 0); timeout > 0 {
		attrs[string(sqstypes.QueueAttributeNameVisibilityTimeout)] = strconv.Itoa(timeout)
	}
	if retention := mcp.AsInt(req.Arguments, "message_retention_period", 0); retention > 0 {
		attrs[string(sqstypes.QueueAttributeNameMessageRetentionPeriod)] = strconv.Itoa(retention)
	}
	if mcp.AsBool(req.Arguments, "fifo") {
		attrs[string(sqstypes.QueueAttributeNameFifoQueue)] = "true"
	}
	input := &sqs.CreateQueueInput{QueueName: aws.String(name)}
	if len(attrs) > 0 {
		input.Attributes = attrs
	}
	out, err := client.CreateQueue(ctx, input)
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"queue_name": name,
		"queue_url":  aws.ToString(out.QueueUrl),
	}), nil
}

func (s *Service) handleSendMessage(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	queueURL := mcp.AsString(req.Arguments, "queue_url")
	body := mcp.AsString(req.Arguments, "message_body")
	if queueURL == "" || body == "" {
		return fail(errors.New("queue_url and message_body are required"))
	}
	client, usedRegion, err := s.sqsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"queue_url":  queueURL,
		"message_id": aws.ToString(out.MessageId),
	}), nil
}

func (s *Service) handleDeleteQueue(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	queueURL := mcp.AsString(req.Arguments, "queue_url")
	if queueURL == "" {
		return fail(errors.New("queue_url is required"))
	}
	client, usedRegion, err := s.sqsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"queue_url": queueURL,
		"deleted":   true,
	}), nil
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
