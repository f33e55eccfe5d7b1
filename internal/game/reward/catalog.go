package reward

// ItemType enumerates the fixed catalog of collectible item types.
// The numeric values are persisted in the items table and must not change.
type ItemType int

const (
	FishingRod ItemType = iota
	Bait
	FishingSocks
	CapitalismHat
	HammerAndSickle
	NewNewCheeselandFlag
)

func (t ItemType) String() string {
	switch t {
	case FishingRod:
		return "Fishing Rod"
	case Bait:
		return "Bait"
	case FishingSocks:
		return "Fishing Socks"
	case CapitalismHat:
		return "Capitalism Hat"
	case HammerAndSickle:
		return "Hammer And Sickle"
	case NewNewCheeselandFlag:
		return "New New Cheeseland Flag"
	default:
		return "Unknown"
	}
}

// Rating enumerates the fixed catalog of item rarities, most common first.
// The numeric values are persisted in the items table and must not change.
type Rating int

const (
	Normal Rating = iota
	Unique
	Strange
	Unusual
)

func (r Rating) String() string {
	switch r {
	case Normal:
		return "Normal"
	case Unique:
		return "Unique"
	case Strange:
		return "Strange"
	case Unusual:
		return "Unusual"
	default:
		return "Unknown"
	}
}

// ItemTypeCount and RatingCount bound the valid enum ranges.
const (
	ItemTypeCount = 6
	RatingCount   = 4
)

// Sampling weights, in catalog order.
var (
	itemTypeWeights = []int{20, 20, 20, 10, 10, 10}
	ratingWeights   = []int{35, 35, 20, 10}
)

// itemChancePercent is the probability that a successful cast yields an
// item instead of a plain fish.
const itemChancePercent = 25

// Species is one entry in the pond fish table: a display name, the score
// value of catching it, and its sampling weight.
type Species struct {
	Name   string
	Value  int
	Weight int
}

// speciesTable maps pond catches to point values. Weights are relative to
// each other and to junkWeight/hazardWeight below.
var speciesTable = []Species{
	{Name: "Minnow", Value: 1, Weight: 30},
	{Name: "Perch", Value: 2, Weight: 24},
	{Name: "Carp", Value: 3, Weight: 18},
	{Name: "Pike", Value: 5, Weight: 10},
	{Name: "Golden Koi", Value: 10, Weight: 3},
}

const (
	junkWeight   = 30
	hazardWeight = 10
)

// junkNames are worthless objects: zero value, still consume a try.
var junkNames = []string{"Old Boot", "Rusty Can", "Soggy Newspaper", "Tangled Line"}
