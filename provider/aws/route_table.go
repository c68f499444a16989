package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// RouteTable manages a VPC route table and its routes.
//
// The local route for the VPC's own block is managed by AWS and never listed
// here.
type RouteTable struct {
	// Inputs

	// The VPC to create the route table in.
	VPCID string `func:"input,forcenew" name:"vpc_id" hcl:"vpc_id"`

	// Routes to add to the table.
	Routes []Route `func:"input" hcl:"route,block"`

	// The region to create the route table in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ID string `func:"output"`

	ec2Service
}

// A Route is a single entry in a route table.
type Route struct {
	// The destination network range, in CIDR notation.
	CIDRBlock string `hcl:"cidr_block" json:"cidr_block" validate:"cidr"`

	// Target internet gateway.
	GatewayID *string `hcl:"gateway_id,optional" json:"gateway_id,omitempty"`

	// Target NAT gateway.
	NATGatewayID *string `hcl:"nat_gateway_id,optional" json:"nat_gateway_id,omitempty"`

	// Target instance.
	InstanceID *string `hcl:"instance_id,optional" json:"instance_id,omitempty"`
}

// Type returns the resource type name.
func (p *RouteTable) Type() string { return "aws_route_table" }

// Create creates a route table and adds the routes to it.
func (p *RouteTable) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.CreateRouteTableInput{VpcId: aws.String(p.VPCID)}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.CreateRouteTableRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.ID = *resp.RouteTable.RouteTableId

	return p.putRoutes(ctx, svc, p.Routes)
}

// Update replaces the routes in the table. Routes from the previous version
// are removed first.
func (p *RouteTable) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*RouteTable)
	p.ID = prev.ID

	for _, route := range prev.Routes {
		del := &ec2.DeleteRouteInput{
			RouteTableId:         aws.String(p.ID),
			DestinationCidrBlock: aws.String(route.CIDRBlock),
		}
		if _, err := svc.DeleteRouteRequest(del).Send(ctx); err != nil {
			if err := handleDelError(err); err != nil {
				return err
			}
		}
	}
	return p.putRoutes(ctx, svc, p.Routes)
}

// Delete deletes the route table. Routes in it are deleted with it.
func (p *RouteTable) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.DeleteRouteTableInput{RouteTableId: aws.String(p.ID)}
	_, err = svc.DeleteRouteTableRequest(input).Send(ctx)
	return handleDelError(err)
}

func (p *RouteTable) putRoutes(ctx context.Context, svc interface {
	CreateRouteRequest(*ec2.CreateRouteInput) ec2.CreateRouteRequest
}, routes []Route) error {
	for _, route := range routes {
		input := &ec2.CreateRouteInput{
			RouteTableId:         aws.String(p.ID),
			DestinationCidrBlock: aws.String(route.CIDRBlock),
			GatewayId:            route.GatewayID,
			NatGatewayId:         route.NATGatewayID,
			InstanceId:           route.InstanceID,
		}
		if _, err := svc.CreateRouteRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	return nil
}
