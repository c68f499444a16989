package aws

import (
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/ec2iface"
	"github.com/landform/landform/resource"
)

type ec2Service struct {
	client ec2iface.ClientAPI
}

// service returns an EC2 API Client. If client was set, it is returned.
func (p *ec2Service) service(auth resource.AuthProvider, region string) (ec2iface.ClientAPI, error) {
	if p.client != nil {
		return p.client, nil
	}
	cfg, err := awsConfig(auth, region)
	if err != nil {
		return nil, err
	}
	return ec2.New(cfg), nil
}
