package engine

import (
	"fmt"
	"sort"

	"github.com/ecosim-lab/ecosim/internal/domain/agent"
)

// Alliance is an append-only group of at least two agents. Alliances are
// created and grown during an episode, never dissolved or shrunk.
type Alliance struct {
	ID      int   `json:"id"`
	Members []int `json:"members"` // agent ids, sorted ascending
}

// AllianceRegistry owns every alliance and is the only code allowed to touch
// member sets or agent alliance ids. Ids are monotonically increasing and
// never recycled within an episode.
type AllianceRegistry struct {
	alliances map[int]*Alliance
	ids       []int // ascending creation order
	nextID    int
}

// NewAllianceRegistry returns an empty registry with the id counter at zero.
func NewAllianceRegistry() *AllianceRegistry {
	return &AllianceRegistry{
		alliances: make(map[int]*Alliance),
	}
}

// Create forms a new alliance containing exactly the two given agents and
// assigns both their alliance ids. Both agents must be unallied.
func (r *AllianceRegistry) Create(a, b *agent.Agent) int {
	if a.Allied() || b.Allied() {
		panic(fmt.Sprintf("alliance: Create with already-allied agent (a=%d alliance=%d, b=%d alliance=%d)",
			a.ID, a.AllianceID, b.ID, b.AllianceID))
	}
	id := r.nextID
	r.nextID++

	members := []int{a.ID, b.ID}
	sort.Ints(members)
	r.alliances[id] = &Alliance{ID: id, Members: members}
	r.ids = append(r.ids, id)

	a.AllianceID = id
	b.AllianceID = id
	return id
}

// Join adds an unallied agent to an existing alliance and sets its alliance id.
func (r *AllianceRegistry) Join(allianceID int, m *agent.Agent) {
	al, ok := r.alliances[allianceID]
	if !ok {
		panic(fmt.Sprintf("alliance: Join on unknown alliance %d", allianceID))
	}
	if m.Allied() {
		panic(fmt.Sprintf("alliance: Join would re-home agent %d from alliance %d to %d; no merge policy is defined",
			m.ID, m.AllianceID, allianceID))
	}
	al.Members = append(al.Members, m.ID)
	sort.Ints(al.Members)
	m.AllianceID = allianceID
}

// Get returns the alliance with the given id, or nil.
func (r *AllianceRegistry) Get(id int) *Alliance {
	return r.alliances[id]
}

// Count returns the number of alliances.
func (r *AllianceRegistry) Count() int {
	return len(r.alliances)
}

// All returns every alliance in ascending id order.
func (r *AllianceRegistry) All() []*Alliance {
	out := make([]*Alliance, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.alliances[id])
	}
	return out
}

// Validate checks the membership invariants against the agent arena: member
// sets are pairwise disjoint with at least two members each, every member's
// alliance id points back at its alliance, and every allied agent appears in
// its alliance's member set. A breach is a programming error and panics.
func (r *AllianceRegistry) Validate(agents []*agent.Agent) {
	seen := make(map[int]int) // agent id -> alliance id
	for _, id := range r.ids {
		al := r.alliances[id]
		if len(al.Members) < 2 {
			panic(fmt.Sprintf("alliance: alliance %d has %d members, need >=2", id, len(al.Members)))
		}
		for _, m := range al.Members {
			if prev, dup := seen[m]; dup {
				panic(fmt.Sprintf("alliance: agent %d appears in alliances %d and %d", m, prev, id))
			}
			seen[m] = id
			if m < 0 || m >= len(agents) {
				panic(fmt.Sprintf("alliance: alliance %d references unknown agent %d", id, m))
			}
			if agents[m].AllianceID != id {
				panic(fmt.Sprintf("alliance: agent %d has alliance id %d but is a member of %d",
					m, agents[m].AllianceID, id))
			}
		}
	}
	for _, a := range agents {
		if !a.Allied() {
			continue
		}
		if id, ok := seen[a.ID]; !ok || id != a.AllianceID {
			panic(fmt.Sprintf("alliance: agent %d claims alliance %d but is not a member", a.ID, a.AllianceID))
		}
	}
}
