package security

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"

	"awspanel/internal/mcp"
)

func (s *Service) acmSpecs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "acm_list_certificates",
			Description: "List ACM certificates.",
			Parameters: mcp.ParamSchema{
				"status": {Type: "string", Enum: []string{"PENDING_VALIDATION", "ISSUED", "EXPIRED", "REVOKED", "FAILED"}},
				"limit":  {Type: "integer"},
				"region": {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleListCertificates,
		},
		{
			Name:        "acm_request_certificate",
			Description: "Request a public certificate with DNS validation.",
			Parameters: mcp.ParamSchema{
				"domain_name":               {Type: "string", Required: true},
				"subject_alternative_names": {Type: "array", Items: &mcp.ParamSpec{Type: "string"}},
				"region":                    {Type: "string"},
			},
			Safety:  mcp.SafetyWrite,
			Handler: s.handleRequestCertificate,
		},
		{
			Name:        "acm_describe_certificate",
			Description: "Describe a certificate by ARN.",
			Parameters: mcp.ParamSchema{
				"certificate_arn": {Type: "string", Required: true},
				"region":          {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleDescribeCertificate,
		},
		{
			Name:        "acm_delete_certificate",
			Description: "Delete an unused certificate.",
			Parameters: mcp.ParamSchema{
				"certificate_arn": {Type: "string", Required: true},
				"region":          {Type: "string"},
			},
			Safety:  mcp.SafetyDestructive,
			Handler: s.handleDeleteCertificate,
		},
		{
			Name:        "acm_get_certificate_validation_status",
			Description: "Report a certificate's domain validation records and status.",
			Parameters: mcp.ParamSchema{
				"certificate_arn": {Type: "string", Required: true},
				"region":          {Type: "string"},
			},
			Safety:  mcp.SafetyReadOnly,
			Handler: s.handleValidationStatus,
		},
	}
}

func (s *Service) handleListCertificates(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.acmClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	limit := mcp.AsInt(req.Arguments, "limit", 100)
	input := &acm.ListCertificatesInput{}
	if status := mcp.AsString(req.Arguments, "status"); status != "" {
		input.CertificateStatuses = []acmtypes.CertificateStatus{acmtypes.CertificateStatus(status)}
	}
	var certs []map[string]any
	for {
		out, err := client.ListCertificates(ctx, input)
		if err != nil {
			return fail(err)
		}
		for _, cert := range out.CertificateSummaryList {
			certs = append(certs, map[string]any{
				"certificate_arn": aws.ToString(cert.CertificateArn),
				"domain_name":     aws.ToString(cert.DomainName),
				"status":          string(cert.Status),
				"type":            string(cert.Type),
				"in_use":          aws.ToBool(cert.InUse),
				"not_after":       cert.NotAfter,
			})
		}
		if limit > 0 && len(certs) >= limit {
			certs = certs[:limit]
			break
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return s.ok(map[string]any{
		"region":       usedRegion,
		"certificates": certs,
		"count":        len(certs),
	}), nil
}

func (s *Service) handleRequestCertificate(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	domain := mcp.AsString(req.Arguments, "domain_name")
	if domain == "" {
		return fail(errors.New("domain_name is required"))
	}
	client, usedRegion, err := s.acmClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	input := &acm.RequestCertificateInput{
		DomainName:       aws.String(domain),
		ValidationMethod: acmtypes.ValidationMethodDns,
	}
	if sans := mcp.AsStringSlice(req.Arguments, "subject_alternative_names"); len(sans) > 0 {
		input.SubjectAlternativeNames = sans
	}
	out, err := client.RequestCertificate(ctx, input)
	if err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":          usedRegion,
		"domain_name":     domain,
		"certificate_arn": aws.ToString(out.CertificateArn),
	}), nil
}

func (s *Service) handleDescribeCertificate(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	arn := mcp.AsString(req.Arguments, "certificate_arn")
	if arn == "" {
		return fail(errors.New("certificate_arn is required"))
	}
	client, usedRegion, err := s.acmClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(arn)})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{"region": usedRegion}
	if cert := out.Certificate; cert != nil {
		data["certificate"] = map[string]any{
			"certificate_arn": aws.ToString(cert.CertificateArn),
			"domain_name":     aws.ToString(cert.DomainName),
			"status":          string(cert.Status),
			"type":            string(cert.Type),
			"issued_at":       cert.IssuedAt,
			"not_after":       cert.NotAfter,
			"in_use_by":       cert.InUseBy,
		}
	}
	return s.ok(data), nil
}

func (s *Service) handleDeleteCertificate(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	arn := mcp.AsString(req.Arguments, "certificate_arn")
	if arn == "" {
		return fail(errors.New("certificate_arn is required"))
	}
	client, usedRegion, err := s.acmClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	if _, err := client.DeleteCertificate(ctx, &acm.DeleteCertificateInput{CertificateArn: aws.String(arn)}); err != nil {
		return fail(err)
	}
	return s.ok(map[string]any{
		"region":          usedRegion,
		"certificate_arn": arn,
		"deleted":         true,
	}), nil
}

func (s *Service) handleValidationStatus(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	arn := mcp.AsString(req.Arguments, "certificate_arn")
	if arn == "" {
		return fail(errors.New("certificate_arn is required"))
	}
	client, usedRegion, err := s.acmClient(ctx, mcp.AsString(req.Arguments, "region"))
	if err != nil {
		return fail(err)
	}
	out, err := client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(arn)})
	if err != nil {
		return fail(err)
	}
	data := map[string]any{"region": usedRegion, "certificate_arn": arn}
	if cert := out.Certificate; cert != nil {
		data["status"] = string(cert.Status)
		var validations []map[string]any
		for _, option := range cert.DomainValidationOptions {
			entry := map[string]any{
				"domain_name":       aws.ToString(option.DomainName),
				"validation_status": string(option.ValidationStatus),
				"validation_method": string(option.ValidationMethod),
			}
			if option.ResourceRecord != nil {
				entry["resource_record"] = map[string]any{
					"name":  aws.ToString(option.ResourceRecord.Name),
					"type":  string(option.ResourceRecord.Type),
					"value": aws.ToString(option.ResourceRecord.Value),
				}
			}
			validations = append(validations, entry)
		}
		data["domain_validations"] = validations
	}
	return s.ok(data), nil
}
