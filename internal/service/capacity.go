package service

// ResolveCapacity computes the effective attendee limit for one appointment
// from every configured badge limit plus the facilitator's own limit. A zero
// or negative value means the source imposes no constraint. When nothing is
// configured the appointment is assumed single-occupant.
func ResolveCapacity(badgeLimits []int, facilitatorLimit int) int {
	capacity := 0
	for _, limit := range badgeLimits {
		if limit <= 0 {
			continue
		}
		if capacity == 0 || limit < capacity {
			capacity = limit
		}
	}
	if facilitatorLimit > 0 && (capacity == 0 || facilitatorLimit < capacity) {
		capacity = facilitatorLimit
	}
	if capacity == 0 {
		return 1
	}
	return capacity
}
