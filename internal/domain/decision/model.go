package decision

// Action is the recommendation a strategy emits.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionWatch Action = "WATCH"
)

// Verdict is what a strategy script returns for one player.
type Verdict struct {
	Action  Action
	Comment string
}

// Decision is a Verdict bound to the player and strategy that produced it.
type Decision struct {
	Action     Action `json:"action"`
	Slug       string `json:"slug"`
	PlayerName string `json:"player_name"`
	Strategy   string `json:"strategy"`
	Comment    string `json:"comment"`
}

func New(v Verdict, slug, playerName, strategy string) Decision {
	return Decision{
		Action:     v.Action,
		Slug:       slug,
		PlayerName: playerName,
		Strategy:   strategy,
		Comment:    v.Comment,
	}
}
