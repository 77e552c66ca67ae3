package models

// SeaMonkey is the per-request projection of a fez roster slot: a real
// member, an open slot, or a redacted placeholder for a member the requester
// has blocked. Never persisted.
type SeaMonkey struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Sentinel usernames for non-member slots.
const (
	AvailableSlotName = "@available"
	BlockedSlotName   = "@blocked"
)

// AvailableSlot returns the sentinel for an open roster slot.
func AvailableSlot() SeaMonkey {
	return SeaMonkey{UserID: 0, Username: AvailableSlotName}
}

// BlockedSlot returns the sentinel standing in for a blocked member. It
// carries no identifying information.
func BlockedSlot() SeaMonkey {
	return SeaMonkey{UserID: 0, Username: BlockedSlotName}
}

// MaskSeaMonkeys substitutes the blocked sentinel for every member in the
// requester's block set. The result has the same length and order as the
// input: masking is a display transform, so blocked slots still consume
// capacity like real members. Runs before capacity resolution.
func MaskSeaMonkeys(monkeys []SeaMonkey, blocks map[uint]bool) []SeaMonkey {
	masked := make([]SeaMonkey, len(monkeys))
	for i, m := range monkeys {
		if blocks[m.UserID] {
			masked[i] = BlockedSlot()
		} else {
			masked[i] = m
		}
	}
	return masked
}

// ResolveCapacity partitions a roster into active members and waitlist.
//
// A maxCapacity of 0 means unlimited: everyone is active. When the roster is
// underfull, the active list is padded with available-slot sentinels up to
// capacity. When overfull, the first maxCapacity members in join order are
// active and the rest wait, also in join order. Join order is the only
// fairness guarantee the platform offers, so the split must preserve it
// exactly.
func ResolveCapacity(monkeys []SeaMonkey, maxCapacity int) (active, waiting []SeaMonkey) {
	if maxCapacity <= 0 {
		return append([]SeaMonkey{}, monkeys...), []SeaMonkey{}
	}

	if len(monkeys) >= maxCapacity {
		active = append([]SeaMonkey{}, monkeys[:maxCapacity]...)
		waiting = append([]SeaMonkey{}, monkeys[maxCapacity:]...)
		return active, waiting
	}

	active = append([]SeaMonkey{}, monkeys...)
	for len(active) < maxCapacity {
		active = append(active, AvailableSlot())
	}
	return active, []SeaMonkey{}
}
