package compute

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"awspanel/internal/mcp"
	"awspanel/internal/redact"
)

func TestComputeHandlerValidation(t *testing.T) {
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ec2Client: func(context.Context, string) (*ec2.Client, string, error) {
			return nil, "", nil
		},
		asgClient: func(context.Context, string) (*autoscaling.Client, string, error) {
			return nil, "", nil
		},
		elbClient: func(context.Context, string) (*elasticloadbalancingv2.Client, string, error) {
			return nil, "", nil
		},
		lambdaClient: func(context.Context, string) (*lambda.Client, string, error) {
			return nil, "", nil
		},
	}

	tests := []struct {
		name    string
		handler func(context.Context, mcp.ToolRequest) (mcp.ToolResult, error)
		args    map[string]any
		wantErr string
	}{
		{"getInstanceMissing", svc.handleGetInstance, map[string]any{}, "instance_id is required"},
		{"startInstanceMissing", svc.handleStartInstance, map[string]any{}, "instance_id is required"},
		{"stopInstanceMissing", svc.handleStopInstance, map[string]any{}, "instance_id is required"},
		{"terminateInstanceMissing", svc.handleTerminateInstance, map[string]any{}, "instance_id is required"},
		{"modifySecurityGroupsMissing", svc.handleModifySecurityGroups, map[string]any{"instance_id": "i-1"}, "security_group_ids are required"},
		{"createAMIMissing", svc.handleCreateAMI, map[string]any{"instance_id": "i-1"}, "name are required"},
		{"createLaunchTemplateMissing", svc.handleCreateLaunchTemplate, map[string]any{"name": "web"}, "image_id are required"},
		{"createASGMissing", svc.handleCreateASG, map[string]any{"name": "web"}, "launch_template_name are required"},
		{"createTargetGroupMissing", svc.handleCreateTargetGroup, map[string]any{"name": "web"}, "vpc_id are required"},
		{"lambdaGetMissing", svc.handleLambdaGetFunction, map[string]any{}, "function_name is required"},
		{"lambdaInvokeMissing", svc.handleLambdaInvokeFunction, map[string]any{}, "function_name is required"},
		{"lambdaDeleteMissing", svc.handleLambdaDeleteFunction, map[string]any{}, "function_name is required"},
		{"lambdaCreateMissing", svc.handleLambdaCreateFunction, map[string]any{"function_name": "fn"}, "are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.handler(context.Background(), mcp.ToolRequest{Arguments: tt.args})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEC2HandlersWithStubbedClient(t *testing.T) {
	responses := map[string]string{
		"DescribeInstances": `<DescribeInstancesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <reservationSet>
    <item>
      <instancesSet>
        <item>
          <instanceId>i-1</instanceId>
          <imageId>ami-1</imageId>
          <instanceType>t3.micro</instanceType>
          <instanceState><code>16</code><name>running</name></instanceState>
          <placement><availabilityZone>us-east-1a</availabilityZone></placement>
          <privateIpAddress>10.0.0.1</privateIpAddress>
          <subnetId>subnet-1</subnetId>
          <vpcId>vpc-1</vpcId>
          <tagSet><item><key>Name</key><value>web-1</value></item></tagSet>
        </item>
      </instancesSet>
    </item>
  </reservationSet>
</DescribeInstancesResponse>`,
		"DescribeImages": `<DescribeImagesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <imagesSet>
    <item>
      <imageId>ami-old</imageId>
      <name>al2023-ami-2023.1-x86_64</name>
      <imageState>available</imageState>
      <creationDate>2023-01-01T00:00:00.000Z</creationDate>
    </item>
    <item>
      <imageId>ami-new</imageId>
      <name>al2023-ami-2023.5-x86_64</name>
      <imageState>available</imageState>
      <creationDate>2024-06-01T00:00:00.000Z</creationDate>
    </item>
  </imagesSet>
</DescribeImagesResponse>`,
		"StartInstances": `<StartInstancesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <instancesSet>
    <item>
      <instanceId>i-1</instanceId>
      <currentState><code>0</code><name>pending</name></currentState>
      <previousState><code>80</code><name>stopped</name></previousState>
    </item>
  </instancesSet>
</StartInstancesResponse>`,
		"DescribeLaunchTemplates": `<DescribeLaunchTemplatesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <launchTemplates>
    <item>
      <launchTemplateId>lt-1</launchTemplateId>
      <launchTemplateName>web</launchTemplateName>
      <defaultVersionNumber>1</defaultVersionNumber>
      <latestVersionNumber>2</latestVersionNumber>
    </item>
  </launchTemplates>
</DescribeLaunchTemplatesResponse>`,
	}
	client := newEC2TestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ec2Client: func(context.Context, string) (*ec2.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	result, err := svc.handleListInstances(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"limit": 1}})
	if err != nil {
		t.Fatalf("list instances: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["count"] != 1 || data["region"] != "us-east-1" {
		t.Fatalf("unexpected list payload: %v", data)
	}

	result, err = svc.handleGetInstance(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"instance_id": "i-1"}})
	if err != nil {
		t.Fatalf("get instance: %v", err)
	}
	instance := result.Data.(map[string]any)["instance"].(map[string]any)
	if instance["name"] != "web-1" || instance["state"] != "running" {
		t.Fatalf("unexpected instance summary: %v", instance)
	}

	result, err = svc.handleSearchAMIs(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"owners": []any{"amazon"}}})
	if err != nil {
		t.Fatalf("search amis: %v", err)
	}
	images := result.Data.(map[string]any)["images"].([]map[string]any)
	// Newest creation date sorts first.
	if len(images) != 2 || images[0]["image_id"] != "ami-new" {
		t.Fatalf("unexpected image order: %v", images)
	}

	result, err = svc.handleStartInstance(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"instance_id": "i-1"}})
	if err != nil {
		t.Fatalf("start instance: %v", err)
	}
	data = result.Data.(map[string]any)
	if data["current_state"] != "pending" || data["previous_state"] != "stopped" {
		t.Fatalf("unexpected state change payload: %v", data)
	}

	if _, err := svc.handleListLaunchTemplates(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"limit": 10}}); err != nil {
		t.Fatalf("list launch templates: %v", err)
	}
}

func TestGetInstanceNotFound(t *testing.T) {
	responses := map[string]string{
		"DescribeInstances": `<DescribeInstancesResponse xmlns="http://ec2.amazonaws.com/doc/2016-11-15/">
  <reservationSet/>
</DescribeInstancesResponse>`,
	}
	client := newEC2TestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		ec2Client: func(context.Context, string) (*ec2.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	_, err := svc.handleGetInstance(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"instance_id": "i-missing"}})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func newEC2TestClient(t *testing.T, responses map[string]string) *ec2.Client {
	t.Helper()
	transport := &queryRoundTripper{responses: responses}
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: transport},
	}
	cfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: "https://ec2.test", SigningRegion: region, HostnameImmutable: true}, nil
		},
	)
	return ec2.NewFromConfig(cfg)
}

// queryRoundTripper answers EC2 Query protocol requests from a canned
// map keyed by the Action form parameter.
type queryRoundTripper struct {
	responses map[string]string
}

func (rt *queryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	values, _ := url.ParseQuery(string(body))
	action := values.Get("Action")
	if action == "" {
		action = req.URL.Query().Get("Action")
	}
	resp, ok := rt.responses[action]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader("unknown action")),
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(strings.TrimSpace(resp))),
		Header:     http.Header{"Content-Type": []string{"text/xml"}},
		Request:    req,
	}, nil
}
