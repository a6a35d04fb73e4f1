package main

import "strconv"

// appMajor, appMinor and appPatch form silorund's semantic version, bumped
// by hand the way lnd's version.go is.
const (
	appMajor = 0
	appMinor = 1
	appPatch = 0
)

func version() string {
	return strconv.Itoa(appMajor) + "." + strconv.Itoa(appMinor) + "." +
		strconv.Itoa(appPatch)
}
