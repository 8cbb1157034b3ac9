package pzip

import "fmt"

// checkDiskSpace is consulted by OpenArchive when Options.PreflightDiskSpace
// is set. It refuses to open the archive when free space looks implausibly
// small next to the configured byte budget — an ambient safety net ported
// from the teacher's spaceCheck/bombCheck feature flags (defaults.go). It
// never alters archive bytes.
func checkDiskSpace(dir string, byteBudget int) error {
	free, _, err := getDiskSpace(dir)
	if err != nil {
		// Best-effort: if the platform can't report free space, don't
		// block archive creation over it.
		return nil
	}
	need := uint64(byteBudget) * 2
	if free < need {
		return newErr(KindOutputIO, "", fmt.Errorf("only %d bytes free in %s, want at least %d for the configured byte budget", free, dir, need))
	}
	return nil
}
