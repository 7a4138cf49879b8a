package database

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"awspanel/internal/mcp"
)

func (s *Service) dynamodbSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "list_dynamodb_tables",
			Description: "List DynamoDB tables.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListTables,
		},
		{
			Name:        "describe_dynamodb_table",
			Description: "Describe a DynamoDB table.",
			Parameters: mcp.ParamSchema{
				"table_name": {Type: "string", Required: true},
				"region":     {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeTable,
		},
		{
			Name:        "create_dynamodb_table",
			Description: "Create a DynamoDB table with a hash key and optional range key, billed on demand.",
			Parameters: mcp.ParamSchema{
				"table_name":     {Type: "string", Required: true},
				"hash_key":       {Type: "string", Required: true, Description: "Partition key attribute name"},
				"hash_key_type":  {Type: "string", Enum: []string{"S", "N", "B"}, Description: "Partition key type, defaults to S"},
				"range_key":      {Type: "string", Description: "Sort key attribute name"},
				"range_key_type": {Type: "string", Enum: []string{"S", "N", "B"}},
				"region":         {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateTable,
		},
		{
			Name:        "delete_dynamodb_table",
			Description: "Delete a DynamoDB table and all of its items.",
			Parameters: mcp.ParamSchema{
				"table_name": {Type: "string", Required: true},
				"region":     {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteTable,
		},
	}
}

func (s *Service) handleListTables(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.dynamodbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &dynamodb.ListTablesInput{}
	var tables []string
	for {
		out, err := client.ListTables(ctx, input)
		if err != nil {
			return fail(err)
		}
		tables = append(tables, out.TableNames...)
		if limit > 0 && len(tables) >= limit {
			tables = tables[:limit]
			break
		}
		if aws.ToString(out.LastEvaluatedTableName) == "" {
			break
		}
		input.ExclusiveStartTableName = out.LastEvaluatedTableName
	}
	return s.ok(map[string]any{
		"region": usedRegion,
		"tables": tables,
		"count":  len(tables),
	}), nil
}

func (s *Service) handleDescribeTable(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "table_name")
	if name == "" {
		return fail(errors.New("table_name is required"))
	}
	client, usedRegion, err := s.dynamodbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{"region": usedRegion}
	if table := out.Table; table != nil {
		var keySchema []map[string]any
		for _, key := range table.KeySchema {
			keySchema = append(keySchema, map[string]any{
				"attribute_name": aws.ToString(key.AttributeName),
				"key_type":       string(key.KeyType),
			})
		}
		data["table"] = map[string]any{
			"table_name":  aws.ToString(table.TableName),
			"table_arn":   aws.ToString(table.TableArn),
			"status":      string(table.TableStatus),
			"item_count":  aws.ToInt64(table.ItemCount),
			"size_bytes":  aws.ToInt64(table.TableSizeBytes),
			"key_schema":  keySchema,
			"created":     table.CreationDateTime,
		}
	}
	return s.ok(data), nil
}

func (s *Service) handleCreateTable(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "table_name")
	hashKey := mcp.AsString(req.Arguments, "hash_key")
	if name == "" || hashKey == "" {
		return fail(errors.New("table_name and hash_key are required"))
	}
	client, usedRegion, err := s.dynamodbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	attributes := []ddbtypes.AttributeDefinition{{
		AttributeName: aws.String(hashKey),
		AttributeType: ddbtypes.ScalarAttributeType(mcp.AsStringDefault(req.Arguments, "hash_key_type", "S")),
	}}
	keySchema := []ddbtypes.KeySchemaElement{{
		AttributeName: aws.String(hashKey),
		KeyType:       ddbtypes.KeyTypeHash,
	}}
	if rangeKey := mcp.AsString(req.Arguments, "range_key"); rangeKey != "" {
		attributes = append(attributes, ddbtypes.AttributeDefinition{
			AttributeName: aws.String(rangeKey),
			AttributeType: ddbtypes.ScalarAttributeType(mcp.AsStringDefault(req.Arguments, "range_key_type", "S")),
		})
		keySchema = append(keySchema, ddbtypes.KeySchemaElement{
			AttributeName: aws.String(rangeKey),
			KeyType:       ddbtypes.KeyTypeRange,
		})
	}
	out, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		AttributeDefinitions: attributes,
		KeySchema:            keySchema,
		BillingMode:          ddbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return fail(err)
	}
	status := ""
	if out.TableDescription != nil {
		status = string(out.TableDescription.TableStatus)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"table_name": name,
		"status":     status,
	}), nil
}

func (s *Service) handleDeleteTable(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	name := mcp.AsString(req.Arguments, "table_name")
	if name == "" {
		return fail(errors.New("table_name is required"))
	}
	client, usedRegion, err := s.dynamodbClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(name)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":     usedRegion,
		"table_name": name,
		"deleted":    true,
	}), nil
}
