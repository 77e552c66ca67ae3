package models

// FezView is the externally visible representation of a fez: denormalized
// metadata plus the capacity-resolved, visibility-masked roster. Computed per
// request, never persisted.
type FezView struct {
	FezID        uint        `json:"fez_id"`
	OwnerID      uint        `json:"owner_id"`
	Title        string      `json:"title"`
	FezType      string      `json:"fez_type"`
	Info         string      `json:"info"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	Location     string      `json:"location"`
	MinCapacity  int         `json:"min_capacity"`
	MaxCapacity  int         `json:"max_capacity"`
	Cancelled    bool        `json:"cancelled"`
	Bookmarked   bool        `json:"bookmarked"`
	Participants []SeaMonkey `json:"participants"`
	Waitlist     []SeaMonkey `json:"waitlist"`
	Posts        []FezPost   `json:"posts,omitempty"`
}
