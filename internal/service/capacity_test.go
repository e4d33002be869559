package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCapacity(t *testing.T) {
	tests := []struct {
		name             string
		badgeLimits      []int
		facilitatorLimit int
		expected         int
	}{
		{name: "nothing configured defaults to one", expected: 1},
		{name: "single badge limit wins", badgeLimits: []int{4}, expected: 4},
		{name: "smallest badge limit wins", badgeLimits: []int{6, 3, 9}, expected: 3},
		{name: "facilitator limit below badges", badgeLimits: []int{6, 8}, facilitatorLimit: 2, expected: 2},
		{name: "facilitator limit above badges", badgeLimits: []int{3}, facilitatorLimit: 10, expected: 3},
		{name: "zero limits impose no constraint", badgeLimits: []int{0, 0, 5}, expected: 5},
		{name: "negative limits impose no constraint", badgeLimits: []int{-1}, facilitatorLimit: -3, expected: 1},
		{name: "facilitator only", facilitatorLimit: 7, expected: 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveCapacity(tc.badgeLimits, tc.facilitatorLimit))
		})
	}
}
