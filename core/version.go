package core

// Firmware version, reported over the interface port and the console.
const (
	VersionMajor = 1
	VersionMinor = 2
	VersionPatch = 0
)

// VersionString returns the firmware version as "major.minor.patch".
func VersionString() string {
	return utoa(VersionMajor) + "." + utoa(VersionMinor) + "." + utoa(VersionPatch)
}
