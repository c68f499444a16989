// Package auth resolves cloud credentials for provisioning resources.
package auth

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/pkg/errors"
)

// Default resolves AWS credentials using the default chain: environment
// variables, then the shared credentials file, then instance metadata.
//
// The resolved provider is cached for the lifetime of the value. Safe for
// concurrent use.
type Default struct {
	mu    sync.Mutex
	creds aws.CredentialsProvider
}

// AWS returns the resolved AWS credentials provider.
func (d *Default) AWS() (aws.CredentialsProvider, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creds != nil {
		return d.creds, nil
	}
	cfg, err := external.LoadDefaultAWSConfig()
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	d.creds = cfg.Credentials
	return d.creds, nil
}

// Static provides fixed AWS credentials. Primarily used in tests.
type Static struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// AWS returns a static credentials provider.
func (s Static) AWS() (aws.CredentialsProvider, error) {
	return aws.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, s.SessionToken), nil
}
