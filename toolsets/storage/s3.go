package storage

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx      mcp.ToolsetContext
	s3Client func(context.Context, string) (*s3.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "list_s3_buckets",
			Description: "List all S3 buckets in the account.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListBuckets,
		},
		{
			Name:        "create_s3_bucket",
			Description: "Create an S3 bucket.",
			Parameters: mcp.ParamSchema{
				"bucket_name": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateBucket,
		},
		{
			Name:        "delete_s3_bucket",
			Description: "Delete an empty S3 bucket.",
			Parameters: mcp.ParamSchema{
				"bucket_name": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteBucket,
		},
		{
			Name:        "list_s3_objects",
			Description: "List objects in an S3 bucket, optionally under a prefix.",
			Parameters: mcp.ParamSchema{
				"bucket_name": {Type: "string", Required: true},
				"prefix":      {Type: "string"},
				"limit":       {Type: "integer"},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListObjects,
		},
		{
			Name:        "get_s3_bucket_info",
			Description: "Get a bucket's region, versioning and encryption settings.",
			Parameters: mcp.ParamSchema{
				"bucket_name": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleBucketInfo,
		},
	}
}

func (s *Service) handleListBuckets(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.s3Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return fail(err)
	}
	var buckets []map[string]any
	for _, bucket := range out.Buckets {
		buckets = append(buckets, map[string]any{
			"name":    aws.ToString(bucket.Name),
			"created": bucket.CreationDate,
		})
	}
	return s.ok(map[string]any{
		"region":  usedRegion,
		"buckets": buckets,
		"count":   len(buckets),
	}), nil
}

func (s *Service) handleCreateBucket(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "bucket_name")
	if name == "" {
		return fail(errors.New("bucket_name is required"))
	}
	client, usedRegion, err := s.s3Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit LocationConstraint.
	if usedRegion != "" && usedRegion != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(usedRegion),
		}
	}
	if _, err := client.CreateBucket(ctx, input); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":      usedRegion,
		"bucket_name": name,
	}), nil
}

func (s *Service) handleDeleteBucket(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "bucket_name")
	if name == "" {
		return fail(errors.New("bucket_name is required"))
	}
	client, usedRegion, err := s.s3Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":      usedRegion,
		"bucket_name": name,
		"deleted":     true,
	}), nil
}

func (s *Service) handleListObjects(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "bucket_name")
	if name == "" {
		return fail(errors.New("bucket_name is required"))
	}
	client, usedRegion, err := s.s3Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &s3.ListObjectsV2Input{Bucket: aws.String(name)}
	if prefix := mcp.AsString(req.Arguments, "prefix"); prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if limit > 0 {
		input.MaxKeys = aws.Int32(int32(limit))
	}
	out, err := client.ListObjectsV2(ctx, input)
	if err != nil {
		return fail(err)
	}
	var objects []map[string]any
	for _, object := range out.Contents {
		objects = append(objects, map[string]any{
			"key":           aws.ToString(object.Key),
			"size":          aws.ToInt64(object.Size),
			"last_modified": object.LastModified,
			"storage_class": string(object.StorageClass),
		})
	}
	return s.ok(map[string]any{
		"region":      usedRegion,
		"bucket_name": name,
		"objects":     objects,
		"count":       len(objects),
		"truncated":   aws.ToBool(out.IsTruncated),
	}), nil
}

func (s *Service) handleBucketInfo(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "bucket_name")
	if name == "" {
		return fail(errors.New("bucket_name is required"))
	}
	client, usedRegion, err := s.s3Client(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	data := map[string]any{
		"region":      usedRegion,
		"bucket_name": name,
	}
	if location, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(name)}); err == nil {
		bucketRegion := string(location.LocationConstraint)
		if bucketRegion == "" {
			bucketRegion = "us-east-1"
		}
		data["bucket_region"] = bucketRegion
	} else {
		return fail(err)
	}
	if versioning, err := client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(name)}); err == nil {
		data["versioning"] = string(versioning.Status)
	}
	if encryption, err := client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)}); err == nil {
		var algorithms []string
		if encryption.ServerSideEncryptionConfiguration != nil {
			for _, rule := range encryption.ServerSideEncryptionConfiguration.Rules {
				if rule.ApplyServerSideEncryptionByDefault != nil {
					algorithms = append(algorithms, string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm))
				}
			}
		}
		data["encryption"] = algorithms
	}
	return s.ok(data), nil
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
