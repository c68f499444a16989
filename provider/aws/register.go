package aws

import "github.com/landform/landform/resource"

// Register registers all AWS resource types.
func Register(reg *resource.Registry) {
	reg.Register(&DBInstance{})
	reg.Register(&DBSubnetGroup{})
	reg.Register(&EIP{})
	reg.Register(&Instance{})
	reg.Register(&InternetGateway{})
	reg.Register(&KeyPair{})
	reg.Register(&RouteTable{})
	reg.Register(&RouteTableAssociation{})
	reg.Register(&SecurityGroup{})
	reg.Register(&Subnet{})
	reg.Register(&VPC{})
}
