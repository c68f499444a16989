// Package config loads user declarations from .hcl files on disk.
//
// A project consists of a directory of .hcl files. The files may declare the
// following blocks, in any file and in any order:
//
//   project "name" {}
//
//   resource "aws_vpc" "main" {
//       cidr_block = "10.0.0.0/16"
//   }
//
//   variable "azs" {
//       default = ["eu-west-1a", "eu-west-1b"]
//   }
//
//   output "vpc_id" {
//       value = aws_vpc.main.id
//   }
//
// Resource attributes may reference other resources (aws_vpc.main.id),
// variables (var.azs) and secrets (secret.db_password). A resource block may
// set count to expand into multiple instances; within the block, count.index
// is the instance ordinal.
//
// Secret values are supplied in a separate secrets file (secrets.hcl by
// default) that contains only top level attributes. Secrets never end up in
// the state in plain text.
package config
