package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func monkey(id uint, name string) SeaMonkey {
	return SeaMonkey{UserID: id, Username: name}
}

func TestResolveCapacityUnlimited(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b"), monkey(3, "c")}

	active, waiting := ResolveCapacity(roster, 0)

	assert.Equal(t, roster, active)
	assert.Empty(t, waiting)
}

func TestResolveCapacityUnderfullPadsWithAvailable(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a")}

	active, waiting := ResolveCapacity(roster, 3)

	assert.Len(t, active, 3)
	assert.Equal(t, monkey(1, "a"), active[0])
	assert.Equal(t, AvailableSlot(), active[1])
	assert.Equal(t, AvailableSlot(), active[2])
	assert.Empty(t, waiting)
}

func TestResolveCapacityOverfullSplitsInJoinOrder(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b"), monkey(3, "c")}

	active, waiting := ResolveCapacity(roster, 2)

	assert.Equal(t, []SeaMonkey{monkey(1, "a"), monkey(2, "b")}, active)
	assert.Equal(t, []SeaMonkey{monkey(3, "c")}, waiting)
}

func TestResolveCapacityExactlyFull(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b")}

	active, waiting := ResolveCapacity(roster, 2)

	assert.Equal(t, roster, active)
	assert.Empty(t, waiting)
}

func TestResolveCapacityDoesNotMutateInput(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b"), monkey(3, "c")}

	active, _ := ResolveCapacity(roster, 2)
	active[0] = monkey(99, "z")

	assert.Equal(t, monkey(1, "a"), roster[0])
}

func TestMaskSeaMonkeysPreservesLengthAndOrder(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b"), monkey(3, "c")}
	blocks := map[uint]bool{2: true}

	masked := MaskSeaMonkeys(roster, blocks)

	assert.Len(t, masked, 3)
	assert.Equal(t, monkey(1, "a"), masked[0])
	assert.Equal(t, BlockedSlot(), masked[1])
	assert.Equal(t, monkey(3, "c"), masked[2])
}

func TestMaskSeaMonkeysNoBlocks(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b")}

	masked := MaskSeaMonkeys(roster, nil)

	assert.Equal(t, roster, masked)
}

// A blocked member still occupies a capacity slot: masking before the split
// means the waitlist is unchanged by who the requester has blocked.
func TestMaskThenResolveBlockedMemberHoldsSlot(t *testing.T) {
	roster := []SeaMonkey{monkey(1, "a"), monkey(2, "b"), monkey(3, "c")}
	blocks := map[uint]bool{1: true}

	active, waiting := ResolveCapacity(MaskSeaMonkeys(roster, blocks), 2)

	assert.Equal(t, []SeaMonkey{BlockedSlot(), monkey(2, "b")}, active)
	assert.Equal(t, []SeaMonkey{monkey(3, "c")}, waiting)
}
