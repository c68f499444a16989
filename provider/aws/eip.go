package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// EIP manages an Elastic IP address, optionally associated with an instance.
type EIP struct {
	// Inputs

	// The instance to associate the address with.
	Instance *string `func:"input" hcl:"instance,optional"`

	// The region to allocate the address in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	AllocationID  string `func:"output" name:"allocation_id"`
	AssociationID string `func:"output" name:"association_id"`
	PublicIP      string `func:"output" name:"public_ip"`

	ec2Service
}

// Type returns the resource type name.
func (p *EIP) Type() string { return "aws_eip" }

// Create allocates the address and associates it when an instance is set.
func (p *EIP) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.AllocateAddressInput{Domain: ec2.DomainTypeVpc}
	resp, err := svc.AllocateAddressRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.AllocationID = *resp.AllocationId
	p.PublicIP = *resp.PublicIp

	return p.associate(ctx, svc)
}

// Update moves the address between instances.
func (p *EIP) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*EIP)
	p.AllocationID = prev.AllocationID
	p.PublicIP = prev.PublicIP

	if prev.AssociationID != "" {
		input := &ec2.DisassociateAddressInput{AssociationId: aws.String(prev.AssociationID)}
		if _, err := svc.DisassociateAddressRequest(input).Send(ctx); err != nil {
			if err := handleDelError(err); err != nil {
				return err
			}
		}
	}
	return p.associate(ctx, svc)
}

// Delete disassociates and releases the address.
func (p *EIP) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	if p.AssociationID != "" {
		input := &ec2.DisassociateAddressInput{AssociationId: aws.String(p.AssociationID)}
		if _, err := svc.DisassociateAddressRequest(input).Send(ctx); err != nil {
			if err := handleDelError(err); err != nil {
				return err
			}
		}
	}

	input := &ec2.ReleaseAddressInput{AllocationId: aws.String(p.AllocationID)}
	_, err = svc.ReleaseAddressRequest(input).Send(ctx)
	return handleDelError(err)
}

func (p *EIP) associate(ctx context.Context, svc interface {
	AssociateAddressRequest(*ec2.AssociateAddressInput) ec2.AssociateAddressRequest
}) error {
	if p.Instance == nil {
		return nil
	}
	input := &ec2.AssociateAddressInput{
		AllocationId: aws.String(p.AllocationID),
		InstanceId:   p.Instance,
	}
	resp, err := svc.AssociateAddressRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.AssociationID = *resp.AssociationId
	return nil
}
