package main

import (
	"context"
	"os"

	_ "github.com/kompox/cloudmeta/adapters/drivers/provider/ec2"
	_ "github.com/kompox/cloudmeta/adapters/drivers/provider/openstack"
)

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	if _, err := execute(root); err != nil {
		os.Exit(1)
	}
}
