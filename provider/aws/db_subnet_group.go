package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// DBSubnetGroup manages an RDS subnet group.
//
// A subnet group names the subnets a database instance may be placed in and
// must span at least two availability zones.
type DBSubnetGroup struct {
	// Inputs

	// The name of the subnet group.
	Name string `func:"input,forcenew" hcl:"name"`

	// A description of the group.
	Description string `func:"input" hcl:"description"`

	// The subnets to include in the group.
	SubnetIDs []string `func:"input" name:"subnet_ids" hcl:"subnet_ids"`

	// The region to create the group in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ARN string `func:"output" name:"arn"`

	rdsService
}

// Type returns the resource type name.
func (p *DBSubnetGroup) Type() string { return "aws_db_subnet_group" }

// Create creates the subnet group.
func (p *DBSubnetGroup) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &rds.CreateDBSubnetGroupInput{
		DBSubnetGroupName:        aws.String(p.Name),
		DBSubnetGroupDescription: aws.String(p.Description),
		SubnetIds:                p.SubnetIDs,
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.CreateDBSubnetGroupRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	if resp.DBSubnetGroup.DBSubnetGroupArn != nil {
		p.ARN = *resp.DBSubnetGroup.DBSubnetGroupArn
	}
	return nil
}

// Update modifies the description or subnets of the group.
func (p *DBSubnetGroup) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*DBSubnetGroup)
	p.ARN = prev.ARN

	input := &rds.ModifyDBSubnetGroupInput{
		DBSubnetGroupName:        aws.String(p.Name),
		DBSubnetGroupDescription: aws.String(p.Description),
		SubnetIds:                p.SubnetIDs,
	}
	if _, err := svc.ModifyDBSubnetGroupRequest(input).Send(ctx); err != nil {
		return handlePutError(err)
	}
	return nil
}

// Delete deletes the subnet group.
func (p *DBSubnetGroup) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &rds.DeleteDBSubnetGroupInput{DBSubnetGroupName: aws.String(p.Name)}
	_, err = svc.DeleteDBSubnetGroupRequest(input).Send(ctx)
	return handleDelError(err)
}
