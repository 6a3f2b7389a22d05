package gpu

// DispatchSize returns the work group counts for one group per blade. When
// the blade count exceeds the device limit for the X dimension the groups are
// folded into rows; the compute shader rebuilds the index as
// y*numGroups.x + x and skips indices past the blade count.
func DispatchSize(blades int, maxGroupsX uint32) [3]uint32 {
	if blades <= 0 {
		return [3]uint32{0, 1, 1}
	}
	if maxGroupsX == 0 {
		maxGroupsX = 65535
	}
	n := uint32(blades)
	if n <= maxGroupsX {
		return [3]uint32{n, 1, 1}
	}
	rows := (n + maxGroupsX - 1) / maxGroupsX
	return [3]uint32{maxGroupsX, rows, 1}
}
