package report

type TabName string

const (
	TabDemografia    TabName = "demografia"
	TabPsicografia   TabName = "psicografia"
	TabComportamento TabName = "comportamento"
)

var avatarTabs = []struct {
	name  TabName
	label string
}{
	{TabDemografia, "Demografia"},
	{TabPsicografia, "Psicografia"},
	{TabComportamento, "Comportamento Digital"},
}

// TabLabel returns the display label of an avatar tab.
func TabLabel(name TabName) string {
	for _, t := range avatarTabs {
		if t.name == name {
			return t.label
		}
	}
	return string(name)
}

// ValidTab reports whether name is one of the avatar tabs.
func ValidTab(name string) bool {
	for _, t := range avatarTabs {
		if string(t.name) == name {
			return true
		}
	}
	return false
}

// TabState holds which avatar sub-view is visible. It belongs to a single
// rendered report and starts on demografia.
type TabState struct {
	active TabName
}

func NewTabState() *TabState {
	return &TabState{active: TabDemografia}
}

func (s *TabState) Active() TabName {
	return s.active
}

// Select switches to name. Unknown names and the already active tab
// leave the state untouched; the return value reports a change.
func (s *TabState) Select(name string) bool {
	if !ValidTab(name) || TabName(name) == s.active {
		return false
	}
	s.active = TabName(name)
	return true
}

func (s *TabState) Visible(name TabName) bool {
	return s.active == name
}

// Apply marks the active tab on every tabbed fragment of view.
func (s *TabState) Apply(view *ReportView) {
	for i := range view.Sections {
		tabs := view.Sections[i].Tabs
		for j := range tabs {
			tabs[j].Active = s.Visible(tabs[j].Name)
		}
	}
}
