package containers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"

	"awspanel/internal/mcp"
	"awspanel/internal/redact"
)

func TestContainersHandlerValidation(t *testing.T) {
	called := false
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ecsClient: func(context.Context, string) (*ecs.Client, string, error) {
			called = true
			return nil, "", nil
		},
		ecrClient: func(context.Context, string) (*ecr.Client, string, error) {
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
		{"describeClusterMissing", svc.handleDescribeECSCluster, map[string]any{}, "cluster_name is required"},
		{"listServicesMissing", svc.handleListECSServices, map[string]any{}, "cluster_name is required"},
		{"listTasksMissing", svc.handleListECSTasks, map[string]any{"status": "RUNNING"}, "cluster_name is required"},
		{"listImagesMissing", svc.handleListImages, map[string]any{}, "repository_name is required"},
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

func TestECSHandlersWithStubbedClient(t *testing.T) {
	responses := map[string]string{
		"AmazonEC2ContainerServiceV20141113.ListClusters": `{"clusterArns":["arn:aws:ecs:us-east-1:123:cluster/web"]}`,
		"AmazonEC2ContainerServiceV20141113.DescribeClusters": `{"clusters":[{
			"clusterName":"web",
			"clusterArn":"arn:aws:ecs:us-east-1:123:cluster/web",
			"status":"ACTIVE",
			"activeServicesCount":1,
			"runningTasksCount":2,
			"pendingTasksCount":0,
			"registeredContainerInstancesCount":1
		}]}`,
	}
	client := newECSTestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ecsClient: func(context.Context, string) (*ecs.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	result, err := svc.handleListECSClusters(context.Background(), mcp.ToolRequest{Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("list clusters: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["count"] != 1 {
		t.Fatalf("unexpected cluster count: %v", data)
	}
	clusters := data["clusters"].([]map[string]any)
	if clusters[0]["cluster_name"] != "web" || clusters[0]["status"] != "ACTIVE" || clusters[0]["running_tasks"] != int32(2) {
		t.Fatalf("unexpected cluster summary: %v", clusters)
	}

	result, err = svc.handleDescribeECSCluster(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"cluster_name": "web"}})
	if err != nil {
		t.Fatalf("describe cluster: %v", err)
	}
	cluster := result.Data.(map[string]any)["cluster"].(map[string]any)
	if cluster["cluster_arn"] != "arn:aws:ecs:us-east-1:123:cluster/web" {
		t.Fatalf("unexpected cluster detail: %v", cluster)
	}
}

func TestDescribeECSClusterNotFound(t *testing.T) {
	responses := map[string]string{
		"AmazonEC2ContainerServiceV20141113.DescribeClusters": `{"clusters":[],"failures":[{"arn":"ghost","reason":"MISSING"}]}`,
	}
	client := newECSTestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ecsClient: func(context.Context, string) (*ecs.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	_, err := svc.handleDescribeECSCluster(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"cluster_name": "ghost"}})
	if err == nil || !strings.Contains(err.Error(), "cluster not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestECRHandlersWithStubbedClient(t *testing.T) {
	responses := map[string]string{
		"AmazonEC2ContainerRegistry_V20150921.DescribeRepositories": `{"repositories":[{
			"repositoryName":"web",
			"repositoryUri":"123.dkr.ecr.us-east-1.amazonaws.com/web",
			"repositoryArn":"arn:aws:ecr:us-east-1:123:repository/web"
		}]}`,
	}
	client := newECRTestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ecrClient: func(context.Context, string) (*ecr.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	result, err := svc.handleListRepositories(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"limit": 10}})
	if err != nil {
		t.Fatalf("list repositories: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["count"] != 1 {
		t.Fatalf("unexpected repository count: %v", data)
	}
	repos := data["repositories"].([]map[string]any)
	if repos[0]["repository_name"] != "web" || repos[0]["repository_uri"] != "123.dkr.ecr.us-east-1.amazonaws.com/web" {
		t.Fatalf("unexpected repository summary: %v", repos)
	}
}

func newECSTestClient(t *testing.T, responses map[string]string) *ecs.Client {
	t.Helper()
	transport := &targetRoundTripper{responses: responses}
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: transport},
	}
	cfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: "https://ecs.test", SigningRegion: region, HostnameImmutable: true}, nil
		},
	)
	return ecs.NewFromConfig(cfg)
}

func newECRTestClient(t *testing.T, responses map[string]string) *ecr.Client {
	t.Helper()
	transport := &targetRoundTripper{responses: responses}
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: transport},
	}
	cfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: "https://ecr.test", SigningRegion: region, HostnameImmutable: true}, nil
		},
	)
	return ecr.NewFromConfig(cfg)
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
		Header:     http.Header{"Content-Type": []string{"application/x-amz-json-1.1"}},
		Request:    req,
	}, nil
}
