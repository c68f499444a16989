package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// Subnet manages a subnet within a VPC.
type Subnet struct {
	// Inputs

	// The VPC to create the subnet in.
	VPCID string `func:"input,forcenew" name:"vpc_id" hcl:"vpc_id"`

	// The IPv4 network range for the subnet, in CIDR notation. Must be a
	// subset of the VPC's block.
	CIDRBlock string `func:"input,forcenew" name:"cidr_block" hcl:"cidr_block" validate:"cidr"`

	// The availability zone to place the subnet in. Chosen by AWS if not
	// set.
	AvailabilityZone *string `func:"input,forcenew" hcl:"availability_zone,optional"`

	// Assign a public IP address to instances launched in this subnet.
	MapPublicIPOnLaunch *bool `func:"input" name:"map_public_ip_on_launch" hcl:"map_public_ip_on_launch,optional"`

	// The region to create the subnet in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ID string `func:"output"`

	ec2Service
}

// Type returns the resource type name.
func (p *Subnet) Type() string { return "aws_subnet" }

// Create creates a new subnet.
func (p *Subnet) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.CreateSubnetInput{
		VpcId:            aws.String(p.VPCID),
		CidrBlock:        aws.String(p.CIDRBlock),
		AvailabilityZone: p.AvailabilityZone,
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.CreateSubnetRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.ID = *resp.Subnet.SubnetId

	return p.setAttributes(ctx, svc)
}

// Update modifies the subnet attributes.
func (p *Subnet) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*Subnet)
	p.ID = prev.ID
	return p.setAttributes(ctx, svc)
}

// Delete deletes the subnet.
func (p *Subnet) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.DeleteSubnetInput{SubnetId: aws.String(p.ID)}
	_, err = svc.DeleteSubnetRequest(input).Send(ctx)
	return handleDelError(err)
}

func (p *Subnet) setAttributes(ctx context.Context, svc interface {
	ModifySubnetAttributeRequest(*ec2.ModifySubnetAttributeInput) ec2.ModifySubnetAttributeRequest
}) error {
	if p.MapPublicIPOnLaunch == nil {
		return nil
	}
	input := &ec2.ModifySubnetAttributeInput{
		SubnetId:            aws.String(p.ID),
		MapPublicIpOnLaunch: &ec2.AttributeBooleanValue{Value: p.MapPublicIPOnLaunch},
	}
	if _, err := svc.ModifySubnetAttributeRequest(input).Send(ctx); err != nil {
		return handlePutError(err)
	}
	return nil
}
