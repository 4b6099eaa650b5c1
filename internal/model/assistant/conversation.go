package assistant

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
}

// Conversation is the in-memory chat transcript. It is not safe for
// concurrent use; the bot control loop owns it.
type Conversation struct {
	turns []Turn
}

func (c *Conversation) Append(role Role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content})
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

// Tail returns a copy of the last n turns, or all of them when n <= 0.
func (c *Conversation) Tail(n int) []Turn {
	from := 0
	if n > 0 && n < len(c.turns) {
		from = len(c.turns) - n
	}
	res := make([]Turn, len(c.turns)-from)
	copy(res, c.turns[from:])
	return res
}
