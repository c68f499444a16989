package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
)

// KeyPair imports a public SSH key for use with EC2 instances.
//
// The private key never leaves the caller.
type KeyPair struct {
	// Inputs

	// The name to register the key under.
	KeyName string `func:"input,forcenew" name:"key_name" hcl:"key_name"`

	// The public key material, in OpenSSH format.
	PublicKey string `func:"input,forcenew" name:"public_key" hcl:"public_key"`

	// The region to import the key into.
	Region *string `func:"input,forcenew" hcl:"region,optional"`

	// Outputs

	// The MD5 fingerprint of the key.
	Fingerprint string `func:"output"`

	ec2Service
}

// Type returns the resource type name.
func (p *KeyPair) Type() string { return "aws_key_pair" }

// Create imports the public key.
func (p *KeyPair) Create(ctx context.Context, r *resource.CreateRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}

	input := &ec2.ImportKeyPairInput{
		KeyName:           aws.String(p.KeyName),
		PublicKeyMaterial: []byte(p.PublicKey),
	}
	if err := input.Validate(); err != nil {
		return resource.ProviderFatalError{Err: err}
	}
	resp, err := svc.ImportKeyPairRequest(input).Send(ctx)
	if err != nil {
		return handlePutError(err)
	}
	if resp.KeyFingerprint != nil {
		p.Fingerprint = *resp.KeyFingerprint
	}
	return nil
}

// Update is never required; every input replaces the key pair.
func (p *KeyPair) Update(ctx context.Context, r *resource.UpdateRequest) error {
	return resource.ProviderFatalError{Err: errors.New("key pair cannot be updated in place")}
}

// Delete removes the key pair.
func (p *KeyPair) Delete(ctx context.Context, r *resource.DeleteRequest) error {
	svc, err := p.service(r.Auth, region(p.Region))
	if err != nil {
		return errors.Wrap(err, "get client")
	}
	input := &ec2.DeleteKeyPairInput{KeyName: aws.String(p.KeyName)}
	_, err = svc.DeleteKeyPairRequest(input).Send(ctx)
	return handleDelError(err)
}
