// SPDX-License-Identifier: MPL-2.0

package container

import (
	"fmt"
	"os"
	"slices"
)

// Identity is a numeric host user, its primary group and its supplementary
// groups.
type Identity struct {
	UID    int
	GID    int
	Groups []int
}

// String renders the identity as "uid:gid" for the --user flag.
func (i *Identity) String() string {
	return fmt.Sprintf("%d:%d", i.UID, i.GID)
}

// HostIdentity returns the identity of the current process. Supplementary
// groups are sorted and deduplicated; the primary group is kept in the list
// when the OS reports it there.
func HostIdentity() (*Identity, error) {
	groups, err := os.Getgroups()
	if err != nil {
		return nil, fmt.Errorf("failed to read supplementary groups: %w", err)
	}
	slices.Sort(groups)
	return &Identity{
		UID:    os.Getuid(),
		GID:    os.Getgid(),
		Groups: slices.Compact(groups),
	}, nil
}
