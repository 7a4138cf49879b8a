package security

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"awspanel/internal/mcp"
)

func (s *Service) secretsSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "secretsmanager_list_secrets",
			Description: "List Secrets Manager secrets.",
			Parameters: mcp.ParamSchema{
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListSecrets,
		},
		{
			Name:        "secretsmanager_create_secret",
			Description: "Create a secret with a string value.",
			Parameters: mcp.ParamSchema{
				"secret_name":  {Type: "string", Required: true},
				"secret_value": {Type: "string", Required: true},
				"description":  {Type: "string"},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateSecret,
		},
		{
			Name:        "secretsmanager_get_secret_value",
			Description: "Read a secret's current value.",
			Parameters: mcp.ParamSchema{
				"secret_name": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleGetSecretValue,
		},
		{
			Name:        "secretsmanager_update_secret",
			Description: "Write a new value for an existing secret.",
			Parameters: mcp.ParamSchema{
				"secret_name":  {Type: "string", Required: true},
				"secret_value": {Type: "string", Required: true},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleUpdateSecret,
		},
		{
			Name:        "secretsmanager_rotate_secret",
			Description: "Start rotation for a secret.",
			Parameters: mcp.ParamSchema{
				"secret_name": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleRotateSecret,
		},
		{
			Name:        "secretsmanager_delete_secret",
			Description: "Schedule a secret for deletion with the default recovery window.",
			Parameters: mcp.ParamSchema{
				"secret_name":  {Type: "string", Required: true},
				"force_delete": {Type: "boolean", Description: "Delete immediately without a recovery window"},
				"region":       {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteSecret,
		},
		{
			Name:        "secretsmanager_restore_secret",
			Description: "Cancel a pending secret deletion.",
			Parameters: mcp.ParamSchema{
				"secret_name": {Type: "string", Required: true},
				"region":      {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleRestoreSecret,
		},
	}
}

func (s *Service) handleListSecrets(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &secretsmanager.ListSecretsInput{}
	var secrets []map[string]any
	for {
		out, err := client.ListSecrets(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, secret := range out.SecretList {
			secrets = append(secrets, map[string]any{
				"name":         aws.ToString(secret.Name),
				"arn":          aws.ToString(secret.ARN),
				"description":  aws.ToString(secret.Description),
				"last_changed": secret.LastChangedDate,
				"deleted_date": secret.DeletedDate,
			})
		}
		if limit > 0 && len(secrets) >= limit {
			secrets = secrets[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":  usedRegion,
		"secrets": secrets,
		"count":   len(secrets),
	}), nil
}

func (s *Service) handleCreateSecret(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "secret_name")
	value := mcp.AsString(req.Arguments, "secret_value")
	if name == "" || value == "" {
		return fail(errors.New("secret_name and secret_value are required"))
	}
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	}
	if description := mcp.AsString(req.Arguments, "description"); description != "" {
		input.Description = aws.String(description)
	}
	out, err := client.CreateSecret(ctx, input)
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"name":   name,
		"arn":    aws.ToString(out.ARN),
	}), nil
}

func (s *Service) handleGetSecretValue(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "secret_name")
	if name == "" {
		return fail(errors.New("secret_name is required"))
	}
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	// The value itself is the point of this operation, so it bypasses
	// the output redactor.
	return mcp.ToolResult{Data: map[string]any{
		"success":      true,
		"region":       usedRegion,
		"name":         aws.ToString(out.Name),
		"arn":          aws.ToString(out.ARN),
		"secret_value": aws.ToString(out.SecretString),
		"version_id":   aws.ToString(out.VersionId),
	}}, nil
}

func (s *Service) handleUpdateSecret(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "secret_name")
	value := mcp.AsString(req.Arguments, "secret_value")
	if name == "" || value == "" {
		return fail(errors.New("secret_name and secret_value are required"))
	}
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"name":       name,
		"version_id": aws.ToString(out.VersionId),
	}), nil
}

func (s *Service) handleRotateSecret(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "secret_name")
	if name == "" {
		return fail(errors.New("secret_name is required"))
	}
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.RotateSecret(ctx, &secretsmanager.RotateSecretInput{SecretId: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"name":       name,
		"version_id": aws.ToString(out.VersionId),
	}), nil
}

func (s *Service) handleDeleteSecret(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "secret_name")
	if name == "" {
		return fail(errors.New("secret_name is required"))
	}
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &secretsmanager.DeleteSecretInput{SecretId: aws.String(name)}
	if mcp.AsBool(req.Arguments, "force_delete") {
		input.ForceDeleteWithoutRecovery = aws.Bool(true)
	}
	out, err := client.DeleteSecret(ctx, input)
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":        usedRegion,
		"name":          name,
		"deletion_date": out.DeletionDate,
	}), nil
}

func (s *Service) handleRestoreSecret(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "secret_name")
	if name == "" {
		return fail(errors.New("secret_name is required"))
	}
	client, usedRegion, err := s.secretsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.RestoreSecret(ctx, &secretsmanager.RestoreSecretInput{SecretId: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":   usedRegion,
		"name":     aws.ToString(out.Name),
		"arn":      aws.ToString(out.ARN),
		"restored": true,
	}), nil
}
