package aws

import (
	"context"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
)

func stubLoader(calls *int) ConfigLoader {
	return func(ctx context.Context, region, profile string) (sdkaws.Config, error) {
		*calls++
		if region == "" {
			region = "us-east-1"
		}
		return sdkaws.Config{Region: region}, nil
	}
}

func TestClientSetCachesConfig(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_DEFAULT_PROFILE", "")
	calls := 0
	set := NewClientSet("us-east-1", "").WithLoader(stubLoader(&calls))

	if _, used, err := set.EC2(context.Background(), ""); err != nil || used != "us-east-1" {
		t.Fatalf("unexpected result: region=%q err=%v", used, err)
	}
	if _, _, err := set.S3(context.Background(), ""); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one loader call for the same region, got %d", calls)
	}

	if _, used, err := set.EC2(context.Background(), "eu-west-1"); err != nil || used != "eu-west-1" {
		t.Fatalf("unexpected result: region=%q err=%v", used, err)
	}
	if calls != 2 {
		t.Fatalf("expected a fresh loader call for a new region, got %d", calls)
	}
}

func TestClientSetInvalidate(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_DEFAULT_PROFILE", "")
	calls := 0
	set := NewClientSet("us-east-1", "").WithLoader(stubLoader(&calls))

	if _, _, err := set.EC2(context.Background(), ""); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	set.Invalidate()
	if _, _, err := set.EC2(context.Background(), ""); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected invalidate to force re-resolution, got %d calls", calls)
	}
}
