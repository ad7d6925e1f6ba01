package suggest

// Candidate is a person eligible for suggestion.
// Text and Name are both optional; an empty string counts as absent.
type Candidate struct {
	Text          string `msgpack:"text,omitempty" toml:"text,omitempty"`
	Name          string `msgpack:"name,omitempty" toml:"name,omitempty"`
	SecondaryText string `msgpack:"secondary,omitempty" toml:"secondary_text,omitempty"`
	ImageInitials string `msgpack:"initials,omitempty" toml:"image_initials,omitempty"`
	Presence      int    `msgpack:"presence,omitempty" toml:"presence,omitempty"`
}

// MatchText returns the field used for matching and de-duplication:
// Text when set, Name otherwise.
func (c *Candidate) MatchText() string {
	if c == nil {
		return ""
	}
	if c.Text != "" {
		return c.Text
	}
	return c.Name
}

func (c *Candidate) String() string {
	if t := c.MatchText(); t != "" {
		return t
	}
	return "<unnamed>"
}
