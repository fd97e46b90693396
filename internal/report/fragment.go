package report

// BlockKind tells a serializer how to lay out a block's items.
type BlockKind string

const (
	BlockText  BlockKind = "text"
	BlockList  BlockKind = "list"
	BlockCards BlockKind = "cards"
	BlockPairs BlockKind = "pairs"
)

func blockKind(k FieldKind) BlockKind {
	switch k {
	case KindText:
		return BlockText
	case KindList:
		return BlockList
	case KindScenario:
		return BlockPairs
	default:
		return BlockCards
	}
}

type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Item is the smallest unit of rendered output.
type Item struct {
	Label       string   `json:"label,omitempty"`
	Text        string   `json:"text"`
	Details     []Detail `json:"details,omitempty"`
	Severity    string   `json:"severity,omitempty"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

// Block renders one field of a section.
type Block struct {
	Label string    `json:"label"`
	Kind  BlockKind `json:"kind"`
	Items []Item    `json:"items"`
}

type Tab struct {
	Name   TabName `json:"name"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
	Blocks []Block `json:"blocks"`
}

// Fragment is the output of one section renderer. The zero Fragment
// renders nothing.
type Fragment struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Icon        string  `json:"icon,omitempty"`
	Blocks      []Block `json:"blocks,omitempty"`
	Tabs        []Tab   `json:"tabs,omitempty"`
	Unavailable bool    `json:"unavailable,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

func (f Fragment) Empty() bool { return f.Key == "" }

// VisibleTab returns the active tab, if the fragment has tabs.
func (f Fragment) VisibleTab() (Tab, bool) {
	for _, t := range f.Tabs {
		if t.Active {
			return t, true
		}
	}
	return Tab{}, false
}
