package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/awserr"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/google/go-cmp/cmp"
	"github.com/landform/landform/resource"
)

func TestIPPermissions(t *testing.T) {
	rules := []SecurityGroupRule{
		{
			Protocol:   "tcp",
			FromPort:   443,
			ToPort:     443,
			CIDRBlocks: []string{"0.0.0.0/0"},
		},
		{
			Protocol:       "tcp",
			FromPort:       5432,
			ToPort:         5432,
			SecurityGroups: []string{"sg-123"},
		},
	}
	got := ipPermissions(rules)
	want := []ec2.IpPermission{
		{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int64(443),
			ToPort:     aws.Int64(443),
			IpRanges:   []ec2.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
		},
		{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int64(5432),
			ToPort:     aws.Int64(5432),
			UserIdGroupPairs: []ec2.UserIdGroupPair{
				{GroupId: aws.String("sg-123")},
			},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("ipPermissions() (-got +want)\n%s", diff)
	}
}

func TestHandlePutError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"Throttle", reqErr(429), true},
		{"ClientFault", reqErr(400), false},
		{"ServerFault", reqErr(500), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handlePutError(tt.err)
			_, transient := err.(resource.ProviderTransientError)
			if transient != tt.transient {
				t.Errorf("handlePutError(%v) transient = %v, want %v", tt.err, transient, tt.transient)
			}
		})
	}
}

func TestHandleDelError_gone(t *testing.T) {
	if err := handleDelError(reqErr(404)); err != nil {
		t.Errorf("handleDelError(404) = %v, want nil", err)
	}
}

func TestRegion(t *testing.T) {
	if got := region(aws.String("eu-west-1")); got != "eu-west-1" {
		t.Errorf("region() = %q, want eu-west-1", got)
	}
}

func TestRegister(t *testing.T) {
	reg := &resource.Registry{}
	Register(reg)
	if reg.New("aws_vpc") == nil {
		t.Error("aws_vpc not registered")
	}
	if reg.New("aws_db_instance") == nil {
		t.Error("aws_db_instance not registered")
	}
}

func reqErr(status int) error {
	return awserr.NewRequestFailure(awserr.New("TestError", "test", nil), status, "req-1")
}
