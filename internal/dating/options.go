package dating

const (
	PlatformTinder      = "Tinder"
	OutcomeOngoing      = "Ongoing"
	OutcomeRelationship = "Relationship"
	OutcomeGhosted      = "Ghosted"
	RelationshipSingle  = "Single"
	StatusActive        = "Active"
)

var PlatformOptions = []string{
	"Tinder", "Hinge", "Bumble", "OkCupid", "Coffee Meets Bagel", "Match",
	"IRL", "Through Friends", "Work", "School", "Other",
}

var OutcomeOptions = []string{
	"Ghosted", "Relationship", "Ongoing", "Friends", "One-time", "Blocked",
	"Mutual End", "Other",
}

var RelationshipStatusOptions = []string{
	"Single", "Married", "Divorced", "Separated", "Complicated", "Unknown",
}

var StatusOptions = []string{"Active", "Inactive", "Archived"}
