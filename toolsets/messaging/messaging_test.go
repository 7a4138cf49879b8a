package messaging

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"awspanel/internal/mcp"
	"awspanel/internal/redact"
)

func TestMessagingHandlerValidation(t *testing.T) {
	called := false
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		sqsClient: func(context.Context, string) (*sqs.Client, string, error) {
			called = true
			return nil, "", nil
		},
		snsClient: func(context.Context, string) (*sns.Client, string, error) {
			called = true
			return nil, "", nil
		},
	}

	tests := []struct {
		name    string
		handler func(context.Context, mcp.ToolRequest) (mcp.ToolResult, error)
		args    map[string]any
		wantErr string
	}{
		{"createQueueMissing", svc.handleCreateQueue, map[string]any{}, "queue_name is required"},
		{"sendMessageMissing", svc.handleSendMessage, map[string]any{"queue_url": "https://sqs.test/q"}, "message_body are required"},
		{"deleteQueueMissing", svc.handleDeleteQueue, map[string]any{}, "queue_url is required"},
		{"createTopicMissing", svc.handleCreateTopic, map[string]any{}, "topic_name is required"},
		{"publishMissing", svc.handlePublish, map[string]any{"topic_arn": "arn:aws:sns:us-east-1:123:alerts"}, "message are required"},
		{"deleteTopicMissing", svc.handleDeleteTopic, map[string]any{}, "topic_arn is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			_, err := tt.handler(context.Background(), mcp.ToolRequest{Arguments: tt.args})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error %q, got %v", tt.wantErr, err)
			}
			if called {
				t.Fatalf("client should not be invoked")
			}
		})
	}
}

func TestSQSHandlersWithStubbedClient(t *testing.T) {
	responses := map[string]string{
		"AmazonSQS.ListQueues":  `{"QueueUrls":["https://sqs.us-east-1.amazonaws.com/123/jobs","https://sqs.us-east-1.amazonaws.com/123/events"]}`,
		"AmazonSQS.CreateQueue": `{"QueueUrl":"https://sqs.us-east-1.amazonaws.com/123/jobs"}`,
		"AmazonSQS.SendMessage": `{"MessageId":"m-1","MD5OfMessageBody":"5d41402abc4b2a76b9719d911017c592"}`,
		"AmazonSQS.DeleteQueue": `{}`,
	}
	client := newSQSTestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		sqsClient: func(context.Context, string) (*sqs.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	result, err := svc.handleListQueues(context.Background(), mcp.ToolRequest{Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("list queues: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["count"] != 2 {
		t.Fatalf("unexpected queue count: %v", data)
	}

	result, err = svc.handleCreateQueue(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"queue_name": "jobs", "visibility_timeout": 60,
	}})
	if err != nil {
		t.Fatalf("create queue: %v", err)
	}
	data = result.Data.(map[string]any)
	if data["queue_url"] != "https://sqs.us-east-1.amazonaws.com/123/jobs" {
		t.Fatalf("unexpected create payload: %v", data)
	}

	result, err = svc.handleSendMessage(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"queue_url": "https://sqs.us-east-1.amazonaws.com/123/jobs", "message_body": "hello",
	}})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.Data.(map[string]any)["message_id"] != "m-1" {
		t.Fatalf("unexpected send payload: %v", result.Data)
	}

	result, err = svc.handleDeleteQueue(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"queue_url": "https://sqs.us-east-1.amazonaws.com/123/jobs",
	}})
	if err != nil {
		t.Fatalf("delete queue: %v", err)
	}
	if result.Data.(map[string]any)["deleted"] != true {
		t.Fatalf("unexpected delete payload: %v", result.Data)
	}
}

func newSQSTestClient(t *testing.T, responses map[string]string) *sqs.Client {
	t.Helper()
	transport := &targetRoundTripper{responses: responses}
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: transport},
	}
	cfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: "https://sqs.test", SigningRegion: region, HostnameImmutable: true}, nil
		},
	)
	return sqs.NewFromConfig(cfg)
}

// targetRoundTripper answers AWS JSON protocol requests from a canned
// map keyed by the X-Amz-Target header.
type targetRoundTripper struct {
	responses map[string]string
}

func (rt *targetRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	target := req.Header.Get("X-Amz-Target")
	resp, ok := rt.responses[target]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader("unknown target")),
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(strings.TrimSpace(resp))),
		Header:     http.Header{"Content-Type": []string{"application/x-amz-json-1.0"}},
		Request:    req,
	}, nil
}
