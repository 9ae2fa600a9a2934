package engine

import (
	"github.com/ecosim-lab/ecosim/internal/domain/agent"
	"github.com/ecosim-lab/ecosim/internal/events"
)

// Phase-2 reward schedule. Social rewards accumulate on top of whatever
// phase 1 assigned.
const (
	rewardShare       = 5
	rewardStealActor  = 10
	rewardStealVictim = -10
	rewardAlliance    = 3
	rewardSignalAlly  = 2
)

// resolveSocial is phase 2 of a step, processed in ascending agent id order.
// Each agent's radius-2 neighbor snapshot is taken fresh at the moment of its
// turn, so a neighbor's earlier phase-2 mutation is visible to later agents.
// That ordering is part of the observable contract.
func (e *Env) resolveSocial(actions []int, rewards []float64) {
	for i, action := range actions {
		a := e.agents[i]

		switch action {
		case ActionShare:
			e.share(a, rewards)
		case ActionSteal:
			e.steal(a, rewards)
		case ActionFormAlliance:
			e.formAlliance(a, rewards)
		case ActionSignalHelp:
			e.signalHelp(a, rewards)
		}
	}
}

// share transfers one food unit to the lowest-id cooperative neighbor.
// Only cooperative agents holding food can share.
func (e *Env) share(a *agent.Agent, rewards []float64) {
	if a.Personality != agent.Cooperative || a.FoodInventory <= 0 {
		return
	}
	for _, id := range e.NearbyAgents(a, socialRadius) {
		other := e.agents[id]
		if other.Personality != agent.Cooperative {
			continue
		}
		a.FoodInventory--
		other.FoodInventory++
		other.Score++
		rewards[a.ID] += rewardShare
		rewards[other.ID] += rewardShare
		e.cooperationEvents++
		e.record(events.SimEvent{Type: events.EventTypeShare, ActorID: a.ID, TargetID: other.ID})
		return
	}
}

// steal takes one food unit from the lowest-id neighbor holding any food.
// Only aggressive agents can steal; the victim's personality does not matter.
func (e *Env) steal(a *agent.Agent, rewards []float64) {
	if a.Personality != agent.Aggressive {
		return
	}
	for _, id := range e.NearbyAgents(a, socialRadius) {
		other := e.agents[id]
		if other.FoodInventory <= 0 {
			continue
		}
		stolen := min(1, other.FoodInventory)
		other.FoodInventory -= stolen
		a.FoodInventory += stolen
		a.Score += stolen
		rewards[a.ID] += rewardStealActor
		rewards[other.ID] += rewardStealVictim
		e.theftEvents++
		e.record(events.SimEvent{Type: events.EventTypeSteal, ActorID: a.ID, TargetID: other.ID})
		return
	}
}

// formAlliance joins or creates an alliance with the lowest-id cooperative
// neighbor. Only unallied cooperative agents can initiate.
//
// If the precondition is ever relaxed so that an already-allied actor can
// reach an eligible neighbor in a different alliance, a merge-or-reject
// policy must be defined first; the registry will panic on any attempt to
// re-home an allied member.
func (e *Env) formAlliance(a *agent.Agent, rewards []float64) {
	if a.Personality != agent.Cooperative || a.Allied() {
		return
	}
	for _, id := range e.NearbyAgents(a, socialRadius) {
		other := e.agents[id]
		if other.Personality != agent.Cooperative {
			continue
		}
		if other.Allied() {
			e.alliances.Join(other.AllianceID, a)
			e.record(events.SimEvent{Type: events.EventTypeAllianceJoined, ActorID: a.ID, TargetID: other.ID})
		} else {
			e.alliances.Create(a, other)
			e.allianceFormations++
			e.record(events.SimEvent{Type: events.EventTypeAllianceFormed, ActorID: a.ID, TargetID: other.ID})
		}
		rewards[a.ID] += rewardAlliance
		rewards[other.ID] += rewardAlliance
		return
	}
}

// signalHelp raises the actor's help signal. If the actor is allied, both the
// actor and each co-present ally earn the signal bonus, once per qualifying
// ally within radius 2 of the actor.
func (e *Env) signalHelp(a *agent.Agent, rewards []float64) {
	a.Signal = agent.SignalHelp
	if !a.Allied() {
		return
	}

	nearby := e.NearbyAgents(a, socialRadius)
	present := make(map[int]bool, len(nearby))
	for _, id := range nearby {
		present[id] = true
	}

	al := e.alliances.Get(a.AllianceID)
	for _, member := range al.Members {
		if !present[member] {
			continue
		}
		rewards[a.ID] += rewardSignalAlly
		rewards[member] += rewardSignalAlly
		e.record(events.SimEvent{Type: events.EventTypeSignalHelp, ActorID: a.ID, TargetID: member})
	}
}
