package database

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"awspanel/internal/mcp"
)

type Service struct {
	ctx            mcp.ToolsetContext
	rdsClient      func(context.Context, string) (*rds.Client, string, error)
	dynamodbClient func(context.Context, string) (*dynamodb.Client, string, error)
}

func (s *Service) specs() []mcp.ToolSpec {
	specs := []mcp.ToolSpec{
		{
			Name:        "list_rds_instances",
			Description: "List RDS database instances.",
			Parameters: mcp.ParamSchema{
				"region": {Type: "string"},
				"limit":  {Type: "integer"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListRDSInstances,
		},
		{
			Name:        "create_rds_instance",
			Description: "Create an RDS database instance.",
			Parameters: mcp.ParamSchema{
				"db_instance_identifier": {Type: "string", Required: true},
				"engine":                 {Type: "string", Required: true, Enum: []string{"mysql", "postgres", "mariadb", "aurora-mysql", "aurora-postgresql"}},
				"db_instance_class":      {Type: "string", Description: "Instance class, defaults to db.t3.micro"},
				"master_username":        {Type: "string", Required: true},
				"master_password":        {Type: "string", Required: true},
				"allocated_storage":      {Type: "integer", Description: "Storage in GiB, defaults to 20"},
				"region":                 {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleCreateRDSInstance,
		},
		{
			Name:        "delete_rds_instance",
			Description: "Delete an RDS database instance, skipping the final snapshot.",
			Parameters: mcp.ParamSchema{
				"db_instance_identifier": {Type: "string", Required: true},
				"region":                 {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteRDSInstance,
		},
	}
	return append(specs, s.dynamodbSpecs()...)
}

func (s *Service) handleListRDSInstances(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.rdsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &rds.DescribeDBInstancesInput{}
	var instances []map[string]any
	for {
		out, err := client.DescribeDBInstances(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, db := range out.DBInstances {
			endpoint := ""
			port := int32(0)
			if db.Endpoint != nil {
				endpoint = aws.ToString(db.Endpoint.Address)
				port = aws.ToInt32(db.Endpoint.Port)
			}
			instances = append(instances, map[string]any{
				"db_instance_identifier": aws.ToString(db.DBInstanceIdentifier),
				"engine":                 aws.ToString(db.Engine),
				"engine_version":         aws.ToString(db.EngineVersion),
				"db_instance_class":      aws.ToString(db.DBInstanceClass),
				"status":                 aws.ToString(db.DBInstanceStatus),
				"endpoint":               endpoint,
				"port":                   port,
				"allocated_storage":      aws.ToInt32(db.AllocatedStorage),
				"multi_az":               aws.ToBool(db.MultiAZ),
			})
		}
		if limit > 0 && len(instances) >= limit {
			instances = instances[:limit]
			break
		}
		if aws.ToString(out.Marker) == "" {
			break
		}
		input.Marker = out.Marker
	}
	return s.ok(map[string]any{
		"region":        usedRegion,
		"db_instances":  instances,
		"count":         len(instances),
	}), nil
}

func (s *Service) handleCreateRDSInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	identifier := mcp.AsString(req.Arguments, "db_instance_identifier")
	engine := mcp.AsString(req.Arguments, "engine")
	username := mcp.AsString(req.Arguments, "master_username")
	password := mcp.AsString(req.Arguments, "master_password")
	if identifier == "" || engine == "" || username == "" || password == "" {
		return fail(errors.New("db_instance_identifier, engine, master_username and master_password are required"))
	}
	client, usedRegion, err := s.rdsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.CreateDBInstance(ctx, &rds.CreateDBInstanceInput{
		DBInstanceIdentifier: aws.String(identifier),
		Engine:               aws.String(engine),
		DBInstanceClass:      aws.String(mcp.AsStringDefault(req.Arguments, "db_instance_class", "db.t3.micro")),
		MasterUsername:       aws.String(username),
		MasterUserPassword:   aws.String(password),
		AllocatedStorage:     aws.Int32(int32(mcp.AsInt(req.Arguments, "allocated_storage", 20))),
	})
	if err != nil {
		return fail(err)
	}
	status := ""
	if out.DBInstance != nil {
		status = aws.ToString(out.DBInstance.DBInstanceStatus)
	}
	return s.ok(map[string]any{
		"region":                 usedRegion,
		"db_instance_identifier": identifier,
		"status":                 status,
	}), nil
}

func (s *Service) handleDeleteRDSInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	identifier := mcp.AsString(req.Arguments, "db_instance_identifier")
	if identifier == "" {
		return fail(errors.New("db_instance_identifier is required"))
	}
	client, usedRegion, err := s.rdsClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	_, err = client.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(identifier),
		SkipFinalSnapshot:    aws.Bool(true),
	})
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":                 usedRegion,
		"db_instance_identifier": identifier,
		"deleted":                true,
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
