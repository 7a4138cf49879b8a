package database

import (
	"errors"

	"awspanel/internal/mcp"
)

type Toolset struct {
	ctx mcp.ToolsetContext
}

func New() *Toolset {
	return &Toolset{}
}

func init() {
	mcp.MustRegisterToolset("database", func() mcp.Toolset {
		return New()
	})
}

func (t *Toolset) ID() string {
	return "database"
}

func (t *Toolset) Version() string {
	return "0.1.0"
}

func (t *Toolset) Init(ctx mcp.ToolsetContext) error {
	if ctx.AWS == nil {
		return errors.New("missing AWS clients")
	}
	t.ctx = ctx
	return nil
}

func (t *Toolset) Register(reg mcp.Registry) error {
	svc := &Service{
		ctx:            t.ctx,
		rdsClient:      t.ctx.AWS.RDS,
		dynamodbClient: t.ctx.AWS.DynamoDB,
	}
	return reg.Register(t.ID(), svc.specs())
}
