package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// VPC manages an AWS Virtual Private Cloud.
//
// A VPC is an isolated virtual network that other network level resources
// (subnets, gateways, security groups) attach to.
type VPC struct {
	// Inputs

	// The IPv4 network range for the VPC, in CIDR notation.
	CIDRBlock string `func:"input,forcenew" name:"cidr_block" hcl:"cidr_block" validate:"cidr"`

	// Enable DNS resolution through the Amazon provided DNS server.
	EnableDNSSupport *bool `func:"input" name:"enable_dns_support" hcl:"enable_dns_support,optional"`

	// Assign public DNS hostnames to instances with public IP addresses.
	EnableDNSHostnames *bool `func:"input" name:"enable_dns_hostnames" hcl:"enable_dns_hostnames,optional"`

	// The region to create the VPC in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ID string `func:"output"`

	ec2Service
}

// Type returns the resource type name.
func (p *VPC) Type() string { return "aws_vpc" }

// Create creates a new VPC.
func (p *VPC) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.CreateVpcInput{
		CidrBlock: aws.String(p.CIDRBlock),
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}

	resp, err := svc.CreateVpcRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.ID = *resp.Vpc.VpcId

	return p.setAttributes(ctx, svc)
}

// Update modifies the VPC attributes.
func (p *VPC) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*VPC)
	p.ID = prev.ID
	return p.setAttributes(ctx, svc)
}

// Delete deletes the VPC.
func (p *VPC) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.DeleteVpcInput{VpcId: aws.String(p.ID)}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	_, err = svc.DeleteVpcRequest(input).Send(ctx)
	return handleDelError(err)
}

// setAttributes applies the DNS attributes. The API only accepts one
// attribute per call.
func (p *VPC) setAttributes(ctx context.Context, svc interface {
	ModifyVpcAttributeRequest(*ec2.ModifyVpcAttributeInput) ec2.ModifyVpcAttributeRequest
}) error {
	if p.EnableDNSSupport != nil {
		input := &ec2.ModifyVpcAttributeInput{
			VpcId:            aws.String(p.ID),
			EnableDnsSupport: &ec2.AttributeBooleanValue{Value: p.EnableDNSSupport},
		}
		if _, err := svc.ModifyVpcAttributeRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	if p.EnableDNSHostnames != nil {
		input := &ec2.ModifyVpcAttributeInput{
			VpcId:              aws.String(p.ID),
			EnableDnsHostnames: &ec2.AttributeBooleanValue{Value: p.EnableDNSHostnames},
		}
		if _, err := svc.ModifyVpcAttributeRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	return nil
}
