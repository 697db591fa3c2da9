//go:build profile
// +build profile

/*
DESCRIPTION
  profile.go enables CPU profiling of hsvtrack when built with the profile
  tag. The profile is written to hsvtrack.prof in the working directory.

AUTHORS
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

func init() {
	canProfile = true
}
