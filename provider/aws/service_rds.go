package aws

import (
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/rdsiface"
	"github.com/landform/landform/resource"
)

type rdsService struct {
	client rdsiface.ClientAPI
}

// service returns an RDS API Client. If client was set, it is returned.
func (p *rdsService) service(auth resource.AuthProvider, region string) (rdsiface.ClientAPI, error) {
	if p.client != nil {
		return p.client, nil
	}
	cfg, err := awsConfig(auth, region)
	if err != nil {
		return nil, err
	}
	return rds.New(cfg), nil
}
