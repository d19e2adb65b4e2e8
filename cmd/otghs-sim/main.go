// Command otghs-sim runs the OTG_HS control transfer engine against a
// simulated peripheral and acts as the USB host during enumeration.
//
// Usage:
//
//	otghs-sim [--config file] [-v] [--json] <command>
//
// The commands are:
//
//	enumerate   reset the bus, read the device descriptor and set the address
//	config      print the effective configuration as YAML
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
