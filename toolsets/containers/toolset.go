package containers

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
	mcp.MustRegisterToolset("containers", func() mcp.Toolset {
		return New()
	})
}

func (t *Toolset) ID() string {
	return "containers"
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
		ctx:       t.ctx,
		ecsClient: t.ctx.AWS.ECS,
		ecrClient: t.ctx.AWS.ECR,
		eksClient: t.ctx.AWS.EKS,
	}
	return reg.Register(t.ID(), svc.specs())
}
