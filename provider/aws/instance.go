package aws

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// Instance manages an EC2 instance.
//
// Create blocks until the instance is running so that dependent resources can
// read its addresses.
type Instance struct {
	// Inputs

	// The AMI to launch the instance from.
	AMI string `func:"input,forcenew" hcl:"ami"`

	// The instance type, for example t3.micro.
	InstanceType string `func:"input" name:"instance_type" hcl:"instance_type"`

	// The subnet to launch the instance in.
	SubnetID string `func:"input,forcenew" name:"subnet_id" hcl:"subnet_id"`

	// Security groups to attach to the instance.
	SecurityGroupIDs []string `func:"input" name:"security_group_ids" hcl:"security_group_ids,optional"`

	// The name of the key pair to allow SSH access with.
	KeyName *string `func:"input,forcenew" name:"key_name" hcl:"key_name,optional"`

	// A script to run on first boot.
	UserData *string `func:"input,forcenew" name:"user_data" hcl:"user_data,optional"`

	// The region to launch the instance in.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	ID        string `func:"output"`
	PrivateIP string `func:"output" name:"private_ip"`
	PublicIP  string `func:"output" name:"public_ip"`

	ec2Service
}

// Type returns the resource type name.
func (p *Instance) Type() string { return "aws_instance" }

// Create launches the instance and waits for it to reach the running state.
func (p *Instance) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(p.AMI),
		InstanceType: ec2.InstanceType(p.InstanceType),
		SubnetId:     aws.String(p.SubnetID),
		KeyName:      p.KeyName,
		MinCount:     aws.Int64(1),
		MaxCount:     aws.Int64(1),
	}
	if len(p.SecurityGroupIDs) > 0 {
		input.SecurityGroupIds = p.SecurityGroupIDs
	}
	if p.UserData != nil {
		input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(*p.UserData)))
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.RunInstancesRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	p.ID = *resp.Instances[0].InstanceId

	return p.waitRunning(ctx, svc)
}

// Update modifies attributes that do not require a new instance.
func (p *Instance) Update(ctx context.Context, r *resource.UpdateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	prev := r.Previous.(*Instance)
	p.ID = prev.ID
	p.PrivateIP = prev.PrivateIP
	p.PublicIP = prev.PublicIP

	if p.InstanceType != prev.InstanceType {
		input := &ec2.ModifyInstanceAttributeInput{
			InstanceId:   aws.String(p.ID),
			InstanceType: &ec2.AttributeValue{Value: aws.String(p.InstanceType)},
		}
		if _, err := svc.ModifyInstanceAttributeRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	if len(p.SecurityGroupIDs) > 0 {
		input := &ec2.ModifyInstanceAttributeInput{
			InstanceId: aws.String(p.ID),
			Groups:     p.SecurityGroupIDs,
		}
		if _, err := svc.ModifyInstanceAttributeRequest(input).Send(ctx); err != nil {
			return handlePutError(err)
		}
	}
	return nil
}

// Delete terminates the instance.
func (p *Instance) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.TerminateInstancesInput{InstanceIds: []string{p.ID}}
	_, err = svc.TerminateInstancesRequest(input).Send(ctx)
	return handleDelError(err)
}

// waitRunning polls until the instance is running and records its addresses.
func (p *Instance) waitRunning(ctx context.Context, svc interface {
	DescribeInstancesRequest(*ec2.DescribeInstancesInput) ec2.DescribeInstancesRequest
}) error {
	input := &ec2.DescribeInstancesInput{InstanceIds: []string{p.ID}}
	for {
		resp, err := svc.DescribeInstancesRequest(input).Send(ctx)
		if err != nil {
			return handlePutError(err)
		}
		if len(resp.Reservations) > 0 && len(resp.Reservations[0].Instances) > 0 {
			inst := resp.Reservations[0].Instances[0]
			if inst.State != nil && inst.State.Name == ec2.InstanceStateNameRunning {
				if inst.PrivateIpAddress != nil {
					p.PrivateIP = *inst.PrivateIpAddress
				}
				if inst.PublicIpAddress != nil {
					p.PublicIP = *inst.PublicIpAddress
				}
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return resource.ProviderTransientError{Err: ctx.Err()}
		case <-time.After(3 * time.Second):
		}
	}
}
