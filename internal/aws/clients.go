package aws

import (
	"context"
	"strings"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53resolver"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"awspanel/internal/cache"
)

// ConfigLoader resolves an aws.Config for a region/profile pair. The
// default is LoadConfig; tests swap in a loader returning stub transports.
type ConfigLoader func(ctx context.Context, region, profile string) (sdkaws.Config, error)

// configTTL bounds how long a resolved config is reused before the
// credential chain is walked again.
const configTTL = 15 * time.Minute

// ClientSet hands out service clients with the resolved config cached per
// region. Every getter also reports the region the client is bound to.
type ClientSet struct {
	mu      sync.Mutex
	configs *cache.Store

	defaultRegion string
	profile       string
	loader        ConfigLoader
}

func NewClientSet(region, profile string) *ClientSet {
	return &ClientSet{
		configs:       cache.NewStore(),
		defaultRegion: region,
		profile:       profile,
		loader:        LoadConfig,
	}
}

// WithLoader replaces the config loader, for tests.
func (c *ClientSet) WithLoader(loader ConfigLoader) *ClientSet {
	c.loader = loader
	return c
}

// Invalidate drops every cached config so the next call re-resolves
// credentials. Wired to SIGHUP by the server.
func (c *ClientSet) Invalidate() {
	c.configs.Flush()
}

func (c *ClientSet) config(ctx context.Context, region string) (sdkaws.Config, string, error) {
	if strings.TrimSpace(region) == "" {
		region = c.defaultRegion
	}
	key := ResolveRegion(region)
	if key == "" {
		key = "default"
	}
	if profile := ResolveProfile(c.profile); profile != "" {
		key = profile + "|" + key
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.configs.Get(key); ok {
		cfg := cached.(sdkaws.Config)
		return cfg, strings.TrimSpace(cfg.Region), nil
	}

	cfg, err := c.loader(ctx, region, c.profile)
	if err != nil {
		return cfg, "", err
	}
	c.configs.Set(key, cfg, configTTL)
	return cfg, strings.TrimSpace(cfg.Region), nil
}

func (c *ClientSet) EC2(ctx context.Context, region string) (*ec2.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return ec2.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) AutoScaling(ctx context.Context, region string) (*autoscaling.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return autoscaling.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) ELB(ctx context.Context, region string) (*elasticloadbalancingv2.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return elasticloadbalancingv2.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) Lambda(ctx context.Context, region string) (*lambda.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return lambda.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) S3(ctx context.Context, region string) (*s3.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return s3.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) RDS(ctx context.Context, region string) (*rds.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return rds.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) DynamoDB(ctx context.Context, region string) (*dynamodb.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return dynamodb.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) Route53Resolver(ctx context.Context, region string) (*route53resolver.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return route53resolver.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) IAM(ctx context.Context, region string) (*iam.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return iam.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) STS(ctx context.Context, region string) (*sts.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return sts.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) KMS(ctx context.Context, region string) (*kms.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return kms.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) SecretsManager(ctx context.Context, region string) (*secretsmanager.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return secretsmanager.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) ACM(ctx context.Context, region string) (*acm.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return acm.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) ECS(ctx context.Context, region string) (*ecs.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return ecs.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) ECR(ctx context.Context, region string) (*ecr.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return ecr.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) EKS(ctx context.Context, region string) (*eks.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return eks.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) SQS(ctx context.Context, region string) (*sqs.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return sqs.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) SNS(ctx context.Context, region string) (*sns.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return sns.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) CloudWatch(ctx context.Context, region string) (*cloudwatch.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return cloudwatch.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) CloudWatchLogs(ctx context.Context, region string) (*cloudwatchlogs.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return cloudwatchlogs.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) CloudFormation(ctx context.Context, region string) (*cloudformation.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return cloudformation.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) CostExplorer(ctx context.Context, region string) (*costexplorer.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return costexplorer.NewFromConfig(cfg), used, nil
}

func (c *ClientSet) SageMaker(ctx context.Context, region string) (*sagemaker.Client, string, error) {
	cfg, used, err := c.config(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return sagemaker.NewFromConfig(cfg), used, nil
}
