package main

import "github.com/frahmantamala/saas-admin/cmd"

func main() {
	cmd.Execute()
}
