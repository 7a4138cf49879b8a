package security

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx           mcp.ToolsetContext
	iamClient     func(context.Context, string) (*iam.Client, string, error)
	stsClient     func(context.Context, string) (*sts.Client, string, error)
	kmsClient     func(context.Context, string) (*kms.Client, string, error)
	secretsClient func(context.Context, string) (*secretsmanager.Client, string, error)
	acmClient     func(context.Context, string) (*acm.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	specs := []mcp.ToolSpec{
		{
			Name:        "iam_list_users",
			Description: "List IAM users.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListUsers,
		},
		{
			Name:        "iam_list_roles",
			Description: "List IAM roles.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListRoles,
		},
		{
			Name:        "iam_list_policies",
			Description: "List customer-managed IAM policies.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListPolicies,
		},
		{
			Name:        "iam_create_user",
			Description: "Create an IAM user.",
			Parameters: mcp.ParamSchema{
				"user_name": {Type: "string", Required: true},
				"region":    {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateUser,
		},
		{
			Name:        "iam_delete_user",
			Description: "Delete an IAM user.",
			Parameters: mcp.ParamSchema{
				"user_name": {Type: "string", Required: true},
				"region":    {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteUser,
		},
		{
			Name:        "sts_get_caller_identity",
			Description: "Report the account and principal the panel is running as.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleCallerIdentity,
		},
		{
			Name:        "kms_list_keys",
			Description: "List KMS keys.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListKeys,
		},
		{
			Name:        "kms_describe_key",
			Description: "Describe a KMS key by id or ARN.",
			Parameters: mcp.ParamSchema{
				"key_id": {Type: "string", Required: true},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeKey,
		},
	}
	specs = append(specs, s.secretsSpecs()...)
	return append(specs, s.acmSpecs()...)
}

func (s *Service) handleListUsers(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.iamClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &iam.ListUsersInput{}
	var users []map[string]any
	for {
		out, err := client.ListUsers(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, user := range out.Users {
			users = append(users, map[string]any{
				"user_name": aws.ToString(user.UserName),
				"user_id":   aws.ToString(user.UserId),
				"arn":       aws.ToString(user.Arn),
				"created":   user.CreateDate,
			})
		}
		if limit > 0 && len(users) >= limit {
			users = users[:limit]
			break
		}
		if !out.IsTruncated {
			break
		}
		input.Marker = out.Marker
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"users":  users,
		"count":  len(users),
	}), nil
}

func (s *Service) handleListRoles(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.iamClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &iam.ListRolesInput{}
	var roles []map[string]any
	for {
		out, err := client.ListRoles(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, role := range out.Roles {
			roles = append(roles, map[string]any{
				"role_name": aws.ToString(role.RoleName),
				"role_id":   aws.ToString(role.RoleId),
				"arn":       aws.ToString(role.Arn),
				"path":      aws.ToString(role.Path),
				"created":   role.CreateDate,
			})
		}
		if limit > 0 && len(roles) >= limit {
			roles = roles[:limit]
			break
		}
		if !out.IsTruncated {
			break
		}
		input.Marker = out.Marker
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"roles":  roles,
		"count":  len(roles),
	}), nil
}

func (s *Service) handleListPolicies(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.iamClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &iam.ListPoliciesInput{Scope: "Local"}
	var policies []map[string]any
	for {
		out, err := client.ListPolicies(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, policy := range out.Policies {
			policies = append(policies, map[string]any{
				"policy_name":      aws.ToString(policy.PolicyName),
				"policy_id":        aws.ToString(policy.PolicyId),
				"arn":              aws.ToString(policy.Arn),
				"attachment_count": aws.ToInt32(policy.AttachmentCount),
				"created":          policy.CreateDate,
			})
		}
		if limit > 0 && len(policies) >= limit {
			policies = policies[:limit]
			break
		}
		if !out.IsTruncated {
			break
		}
		input.Marker = out.Marker
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"policies": policies,
		"count":    len(policies),
	}), nil
}

func (s *Service) handleCreateUser(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "user_name")
	if name == "" {
		return fail(errors.New("user_name is required"))
	}
	client, usedRegion, err := s.iamClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.CreateUser(ctx, &iam.CreateUserInput{UserName: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	arn := ""
	if out.User != nil {
		arn = aws.ToString(out.User.Arn)
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"user_name": name,
		"arn":       arn,
	}), nil
}

func (s *Service) handleDeleteUser(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "user_name")
	if name == "" {
		return fail(errors.New("user_name is required"))
	}
	client, usedRegion, err := s.iamClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteUser(ctx, &iam.DeleteUserInput{UserName: aws.String(name)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":    usedRegion,
		"user_name": name,
		"deleted":   true,
	}), nil
}

func (s *Service) handleCallerIdentity(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.stsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":  usedRegion,
		"account": aws.ToString(out.Account),
		"arn":     aws.ToString(out.Arn),
		"user_id": aws.ToString(out.UserId),
	}), nil
}

func (s *Service) handleListKeys(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.kmsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &kms.ListKeysInput{}
	var keys []map[string]any
	for {
		out, err := client.ListKeys(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, key := range out.Keys {
			keys = append(keys, map[string]any{
				"key_id":  aws.ToString(key.KeyId),
				"key_arn": aws.ToString(key.KeyArn),
			})
		}
		if limit > 0 && len(keys) >= limit {
			keys = keys[:limit]
			break
		}
		if !out.Truncated {
			break
		}
		input.Marker = out.NextMarker
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"keys":   keys,
		"count":  len(keys),
	}), nil
}

func (s *Service) handleDescribeKey(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	keyID := mcp.AsString(req.Arguments, "key_id")
	if keyID == "" {
		return fail(errors.New("key_id is required"))
	}
	client, usedRegion, err := s.kmsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: aws.String(keyID)})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{"region": usedRegion}
	if meta := out.KeyMetadata; meta != nil {
		data["key"] = map[string]any{
			"key_id":      aws.ToString(meta.KeyId),
			"arn":         aws.ToString(meta.Arn),
			"description": aws.ToString(meta.Description),
			"enabled":     meta.Enabled,
			"state":       string(meta.KeyState),
			"usage":       string(meta.KeyUsage),
			"created":     meta.CreationDate,
		}
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
