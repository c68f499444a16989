package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// SecurityGroup manages a VPC security group and its rules.
type SecurityGroup struct {
	// Inputs

	// The name of the security group. Must be unique within the VPC.
	Name string `func:"input,forcenew" hcl:"name"`

	// A description of the group.
	Description string `func:"input,forcenew" hcl:"description"`

	// The VPC to create the group in.
	VPCID string `func:"input,forcenew" name:"vpc_id" hcl:"vpc_id"`

	// Inbound rules.
	Ingress []SecurityGroupRule `func:"input" hcl:"ingress,block"`

	// Outbound rules. AWS adds an allow-all egress rule to new groups; it is
	// left in place when no egress rules are set.
	Egress []SecurityGroupRule `func:"input" hcl:"egress,block"`

	// The region to create the group in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ID string `func:"output"`

	ec2Service
}

// A SecurityGroupRule allows traffic matching a protocol and port range from
// a set of sources (ingress) or to a set of destinations (egress).
type SecurityGroupRule struct {
	// The IP protocol. One of tcp, udp, icmp or -1 for all.
	Protocol string `hcl:"protocol" json:"protocol"`

	// First port in the range.
	FromPort int64 `hcl:"from_port" json:"from_port"`

	// Last port in the range.
	ToPort int64 `hcl:"to_port" json:"to_port"`

	// Network ranges the rule applies to, in CIDR notation.
	CIDRBlocks []string `hcl:"cidr_blocks,optional" json:"cidr_blocks,omitempty" validate:"dive,cidr"`

	// Security groups the rule applies to.
	SecurityGroups []string `hcl:"security_groups,optional" json:"security_groups,omitempty"`
}

// Type returns the resource type name.
func (p *SecurityGroup) Type() string { return "aws_security_group" }

// Create creates the security group and authorizes its rules.
func (p *SecurityGroup) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(p.Name),
		Description: aws.String(p.Description),
		VpcId:       aws.String(p.VPCID),
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.CreateSecurityGroupRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.ID = *resp.GroupId

	return p.authorize(ctx, svc, p.Ingress, p.Egress)
}

// Update replaces the rules in the group. Rules from the previous version are
// revoked first.
func (p *SecurityGroup) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*SecurityGroup)
	p.ID = prev.ID

	if len(prev.Ingress) > 0 {
		input := &ec2.RevokeSecurityGroupIngressInput{
			GroupId:       aws.String(p.ID),
			IpPermissions: ipPermissions(prev.Ingress),
		}
		if _, err := svc.RevokeSecurityGroupIngressRequest(input).Send(ctx); err != nil {
			if err := handleDelError(err); err != nil {
				return err
			}
		}
	}
	if len(prev.Egress) > 0 {
		input := &ec2.RevokeSecurityGroupEgressInput{
			GroupId:       aws.String(p.ID),
			IpPermissions: ipPermissions(prev.Egress),
		}
		if _, err := svc.RevokeSecurityGroupEgressRequest(input).Send(ctx); err != nil {
			if err := handleDelError(err); err != nil {
				return err
			}
		}
	}

	return p.authorize(ctx, svc, p.Ingress, p.Egress)
}

// Delete deletes the security group.
func (p *SecurityGroup) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.DeleteSecurityGroupInput{GroupId: aws.String(p.ID)}
	_, err = svc.DeleteSecurityGroupRequest(input).Send(ctx)
	return handleDelError(err)
}

func (p *SecurityGroup) authorize(ctx context.Context, svc interface {
	AuthorizeSecurityGroupIngressRequest(*ec2.AuthorizeSecurityGroupIngressInput) ec2.AuthorizeSecurityGroupIngressRequest
	AuthorizeSecurityGroupEgressRequest(*ec2.AuthorizeSecurityGroupEgressInput) ec2.AuthorizeSecurityGroupEgressRequest
}, ingress, egress []SecurityGroupRule) error {
	if len(ingress) > 0 {
		input := &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       aws.String(p.ID),
			IpPermissions: ipPermissions(ingress),
		}
		if _, err := svc.AuthorizeSecurityGroupIngressRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	if len(egress) > 0 {
		input := &ec2.AuthorizeSecurityGroupEgressInput{
			GroupId:       aws.String(p.ID),
			IpPermissions: ipPermissions(egress),
		}
		if _, err := svc.AuthorizeSecurityGroupEgressRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	return nil
}

// ipPermissions converts rules to the EC2 permission format.
func ipPermissions(rules []SecurityGroupRule) []ec2.IpPermission {
	perms := make([]ec2.IpPermission, len(rules))
	for i, rule := range rules {
		perm := ec2.IpPermission{
			IpProtocol: aws.String(rule.Protocol),
			FromPort:   aws.Int64(rule.FromPort),
			ToPort:     aws.Int64(rule.ToPort),
		}
		for _, block := range rule.CIDRBlocks {
			perm.IpRanges = append(perm.IpRanges, ec2.IpRange{CidrIp: aws.String(block)})
		}
		for _, group := range rule.SecurityGroups {
			perm.UserIdGroupPairs = append(perm.UserIdGroupPairs, ec2.UserIdGroupPair{GroupId: aws.String(group)})
		}
		perms[i] = perm
	}
	return perms
}
