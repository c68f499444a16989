package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// InternetGateway manages an AWS internet gateway.
//
// The gateway is attached to a VPC on creation and gives resources in public
// subnets a route to the internet.
type InternetGateway struct {
	// Inputs

	// The VPC to attach the gateway to.
	VPCID string `func:"input,forcenew" name:"vpc_id" hcl:"vpc_id"`

	// The region to create the gateway in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ID string `func:"output"`

	ec2Service
}

// Type returns the resource type name.
func (p *InternetGateway) Type() string { return "aws_internet_gateway" }

// Create creates an internet gateway and attaches it to the VPC.
func (p *InternetGateway) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	resp, err := svc.CreateInternetGatewayRequest(&ec2.CreateInternetGatewayInput{}).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.ID = *resp.InternetGateway.InternetGatewayId

	attach := &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(p.ID),
		VpcId:             aws.String(p.VPCID),
	}
	if _, err := svc.AttachInternetGatewayRequest(attach).Send(ctx); err != nil {
		return handlePutError(err)
	}
	return nil
}

// Update is never required; every input replaces the gateway.
func (p *InternetGateway) Update(ctx context.Context, r *resource.UpdateRequest) error {
	return resource.ProviderFatalError{Err: errors.New("internet gateway cannot be updated in place")}
}

// Delete detaches the gateway from the VPC and deletes it.
func (p *InternetGateway) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	detach := &ec2.DetachInternetGatewayInput{
		InternetGatewayId: aws.String(p.ID),
		VpcId:             aws.String(p.VPCID),
	}
	if _, err := svc.DetachInternetGatewayRequest(detach).Send(ctx); err != nil {
		if err := handleDelError(err); err != nil {
			return err
		}
	}

	input := &ec2.DeleteInternetGatewayInput{InternetGatewayId: aws.String(p.ID)}
	_, err = svc.DeleteInternetGatewayRequest(input).Send(ctx)
	return handleDelError(err)
}
