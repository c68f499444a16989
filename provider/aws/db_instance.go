package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// DBInstance manages an RDS database instance.
//
// Create blocks until the instance is available so that dependents can read
// the endpoint. This can take several minutes.
type DBInstance struct {
	// Inputs

	// The unique identifier for the instance.
	Identifier string `func:"input,forcenew" hcl:"identifier"`

	// The database engine, for example postgres or mysql.
	Engine string `func:"input,forcenew" hcl:"engine"`

	// The engine version. The default for the engine is used if not set.
	EngineVersion *string `func:"input" name:"engine_version" hcl:"engine_version,optional"`

	// The compute class, for example db.t3.micro.
	InstanceClass string `func:"input" name:"instance_class" hcl:"instance_class"`

	// Storage to allocate, in gigabytes.
	AllocatedStorage int64 `func:"input" name:"allocated_storage" hcl:"allocated_storage"`

	// The name of the initial database to create.
	DBName *string `func:"input,forcenew" name:"db_name" hcl:"db_name,optional"`

	// The master username.
	Username string `func:"input,forcenew" hcl:"username"`

	// The master password.
	Password string `func:"input,secret" hcl:"password"`

	// The subnet group to place the instance in.
	DBSubnetGroupName *string `func:"input,forcenew" name:"db_subnet_group_name" hcl:"db_subnet_group_name,optional"`

	// Security groups to attach to the instance.
	VPCSecurityGroupIDs []string `func:"input" name:"vpc_security_group_ids" hcl:"vpc_security_group_ids,optional"`

	// Run a standby replica in another availability zone.
	MultiAZ *bool `func:"input" name:"multi_az" hcl:"multi_az,optional"`

	// The region to create the instance in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ARN      string `func:"output" name:"arn"`
	Endpoint string `func:"output"`
	Port     int64  `func:"output"`

	rdsService
}

// Type returns the resource type name.
func (p *DBInstance) Type() string { return "aws_db_instance" }

// Create creates the database instance and waits for it to become available.
func (p *DBInstance) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &rds.CreateDBInstanceInput{
		DBInstanceIdentifier: aws.String(p.Identifier),
		Engine:               aws.String(p.Engine),
		EngineVersion:        p.EngineVersion,
		DBInstanceClass:      aws.String(p.InstanceClass),
		AllocatedStorage:     aws.Int64(p.AllocatedStorage),
		DBName:               p.DBName,
		MasterUsername:       aws.String(p.Username),
		MasterUserPassword:   aws.String(p.Password),
		DBSubnetGroupName:    p.DBSubnetGroupName,
		MultiAZ:              p.MultiAZ,
	}
	if len(p.VPCSecurityGroupIDs) > 0 {
		input.VpcSecurityGroupIds = p.VPCSecurityGroupIDs
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	if _, err := svc.CreateDBInstanceRequest(input).Send(ctx); err != nil {
		return handlePutError(err)
	}

	return p.waitAvailable(ctx, svc)
}

// Update modifies the instance in place. Changes are applied immediately
// rather than in the next maintenance window.
func (p *DBInstance) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*DBInstance)
	p.ARN = prev.ARN
	p.Endpoint = prev.Endpoint
	p.Port = prev.Port

	input := &rds.ModifyDBInstanceInput{
		DBInstanceIdentifier: aws.String(p.Identifier),
		DBInstanceClass:      aws.String(p.InstanceClass),
		AllocatedStorage:     aws.Int64(p.AllocatedStorage),
		MasterUserPassword:   aws.String(p.Password),
		EngineVersion:        p.EngineVersion,
		MultiAZ:              p.MultiAZ,
		ApplyImmediately:     aws.Bool(true),
	}
	if len(p.VPCSecurityGroupIDs) > 0 {
		input.VpcSecurityGroupIds = p.VPCSecurityGroupIDs
	}
	if _, err := svc.ModifyDBInstanceRequest(input).Send(ctx); err != nil {
		return handlePutError(err)
	}
	return p.waitAvailable(ctx, svc)
}

// Delete deletes the instance without a final snapshot.
func (p *DBInstance) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(p.Identifier),
		SkipFinalSnapshot:    aws.Bool(true),
	}
	_, err = svc.DeleteDBInstanceRequest(input).Send(ctx)
	return handleDelError(err)
}

// waitAvailable polls until the instance is available and records the
// endpoint.
func (p *DBInstance) waitAvailable(ctx context.Context, svc interface {
	DescribeDBInstancesRequest(*rds.DescribeDBInstancesInput) rds.DescribeDBInstancesRequest
}) error {
	input := &rds.DescribeDBInstancesInput{DBInstanceIdentifier: aws.String(p.Identifier)}
	for {
		resp, err := svc.DescribeDBInstancesRequest(input).Send(ctx)
		if err != nil {
			return handlePutError(err)
		}
		if len(resp.DBInstances) > 0 {
			db := resp.DBInstances[0]
			if db.DBInstanceStatus != nil && *db.DBInstanceStatus == "available" {
				if db.DBInstanceArn != nil {
					p.ARN = *db.DBInstanceArn
				}
				if db.Endpoint != nil {
					if db.Endpoint.Address != nil {
						p.Endpoint = *db.Endpoint.Address
					}
					if db.Endpoint.Port != nil {
						p.Port = *db.Endpoint.Port
					}
				}
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return resource.ProviderTransientError{Err: ctx.Err()}
		case <-time.After(15 * time.Second):
		}
	}
}
