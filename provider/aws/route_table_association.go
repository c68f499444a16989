package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// RouteTableAssociation attaches a route table to a subnet.
type RouteTableAssociation struct {
	// Inputs

	// The subnet to associate the route table with.
	SubnetID string `func:"input,forcenew" name:"subnet_id" hcl:"subnet_id"`

	// The route table to associate.
	RouteTableID string `func:"input" name:"route_table_id" hcl:"route_table_id"`

	// The region the subnet is in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	AssociationID string `func:"output" name:"association_id"`

	ec2Service
}

// Type returns the resource type name.
func (p *RouteTableAssociation) Type() string { return "aws_route_table_association" }

// Create associates the route table with the subnet.
func (p *RouteTableAssociation) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.AssociateRouteTableInput{
		RouteTableId: aws.String(p.RouteTableID),
		SubnetId:     aws.String(p.SubnetID),
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.AssociateRouteTableRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.AssociationID = *resp.AssociationId
	return nil
}

// Update points the association at another route table.
func (p *RouteTableAssociation) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*RouteTableAssociation)

	input := &ec2.ReplaceRouteTableAssociationInput{
		AssociationId: aws.String(prev.AssociationID),
		RouteTableId:  aws.String(p.RouteTableID),
	}
	resp, err := svc.ReplaceRouteTableAssociationRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.AssociationID = *resp.NewAssociationId
	return nil
}

// Delete removes the association.
func (p *RouteTableAssociation) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.DisassociateRouteTableInput{AssociationId: aws.String(p.AssociationID)}
	_, err = svc.DisassociateRouteTableRequest(input).Send(ctx)
	return handleDelError(err)
}
