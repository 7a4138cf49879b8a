package security

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/acm"

	"awspanel/internal/mcp"
	"awspanel/internal/redact"
)

func TestACMListCertificatesWithStubbedClient(t *testing.T) {
	responses := map[string]string{
		"CertificateManager.ListCertificates": `{"CertificateSummaryList":[
			{
				"CertificateArn":"arn:aws:acm:us-east-1:123:certificate/abc",
				"DomainName":"example.com",
				"Status":"ISSUED",
				"Type":"AMAZON_ISSUED",
				"InUse":true
			},
			{
				"CertificateArn":"arn:aws:acm:us-east-1:123:certificate/def",
				"DomainName":"staging.example.com",
				"Status":"PENDING_VALIDATION",
				"Type":"AMAZON_ISSUED",
				"InUse":false
			}
		]}`,
	}
	client := newACMTestClient(t, responses)
	svc := &Service{
		ctx: mcp.ToolsetContext{Redactor: redact.New()},
		acmClient: func(context.Context, string) (*acm.Client, string, error) {
			return client, "us-east-1", nil
		},
	}

	result, err := svc.handleListCertificates(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"limit": 10}})
	if err != nil {
		t.Fatalf("list certificates: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["count"] != 2 {
		t.Fatalf("unexpected certificate count: %v", data)
	}
	certs := data["certificates"].([]map[string]any)
	if certs[0]["domain_name"] != "example.com" || certs[0]["status"] != "ISSUED" || certs[0]["in_use"] != true {
		t.Fatalf("unexpected certificate summary: %v", certs)
	}

	// The limit truncates the page before pagination continues.
	result, err = svc.handleListCertificates(context.Background(), mcp.ToolRequest{Arguments: map[string]any{"limit": 1}})
	if err != nil {
		t.Fatalf("list certificates limited: %v", err)
	}
	if result.Data.(map[string]any)["count"] != 1 {
		t.Fatalf("limit should truncate results: %v", result.Data)
	}
}

func newACMTestClient(t *testing.T, responses map[string]string) *acm.Client {
	t.Helper()
	transport := &targetRoundTripper{responses: responses}
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: transport},
	}
	cfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: "https://acm.test", SigningRegion: region, HostnameImmutable: true}, nil
		},
	)
	return acm.NewFromConfig(cfg)
}
