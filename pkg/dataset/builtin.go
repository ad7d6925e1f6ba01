package dataset

import "github.com/bastiangx/pickserve/pkg/suggest"

// Presence values carried on Candidate.Presence.
const (
	PresenceNone = iota
	PresenceOffline
	PresenceOnline
	PresenceAway
	PresenceDoNotDisturb
	PresenceBlocked
	PresenceBusy
)

// builtinPeople backs Builtin. Each call hands out fresh copies so callers
// never share pointers.
var builtinPeople = []suggest.Candidate{
	{Text: "Annie Lindqvist", SecondaryText: "Designer", ImageInitials: "AL", Presence: PresenceOnline},
	{Text: "Aaron Reid", SecondaryText: "Designer", ImageInitials: "AR", Presence: PresenceBusy},
	{Text: "Alex Lundberg", SecondaryText: "Software Developer", ImageInitials: "AL", Presence: PresenceDoNotDisturb},
	{Text: "Roko Kolar", SecondaryText: "Financial Analyst", ImageInitials: "RK", Presence: PresenceOffline},
	{Text: "Christian Bergqvist", SecondaryText: "Sr. Designer", ImageInitials: "CB", Presence: PresenceOnline},
	{Text: "Valentina Lovric", SecondaryText: "Design Developer", ImageInitials: "VL", Presence: PresenceOnline},
	{Text: "Maor Sharett", SecondaryText: "UX Designer", ImageInitials: "MS", Presence: PresenceAway},
	{Text: "Anny Lindqvist", SecondaryText: "Designer", ImageInitials: "AL", Presence: PresenceAway},
	{Text: "Aidan Reilly", SecondaryText: "Designer", ImageInitials: "AR", Presence: PresenceBusy},
	{Text: "Alma Lundström", SecondaryText: "Software Developer", ImageInitials: "AL", Presence: PresenceDoNotDisturb},
	{Text: "Rolf Kolbeck", SecondaryText: "Financial Analyst", ImageInitials: "RK", Presence: PresenceOffline},
	{Text: "Christina Bergström", SecondaryText: "Sr. Designer", ImageInitials: "CB", Presence: PresenceOnline},
	{Text: "Valerie Lovell", SecondaryText: "Design Developer", ImageInitials: "VL", Presence: PresenceOnline},
	{Text: "Mariana Sharp", SecondaryText: "UX Designer", ImageInitials: "MS", Presence: PresenceAway},
	{Name: "Service Account", SecondaryText: "Automation"},
	{Name: "build-bot", SecondaryText: "Automation"},
}

// Builtin returns a small people set for demos and tests.
func Builtin() []*suggest.Candidate {
	people := make([]*suggest.Candidate, len(builtinPeople))
	for i := range builtinPeople {
		person := builtinPeople[i]
		people[i] = &person
	}
	return people
}
