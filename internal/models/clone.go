package models

// Clone returns a deep copy of the game so callers can mutate a snapshot
// without aliasing the stored document.
func (g *Game) Clone() *Game {
	cp := *g
	if g.Meeting != nil {
		m := *g.Meeting
		m.Votes = make(map[string]*string, len(g.Meeting.Votes))
		for k, v := range g.Meeting.Votes {
			if v == nil {
				m.Votes[k] = nil
				continue
			}
			t := *v
			m.Votes[k] = &t
		}
		cp.Meeting = &m
	}
	cp.Events = append([]GameEvent(nil), g.Events...)
	return &cp
}

func (p *Player) Clone() *Player {
	cp := *p
	cp.AssignedTasks = append([]string(nil), p.AssignedTasks...)
	cp.CompletedTasks = append([]TaskCompletion(nil), p.CompletedTasks...)
	if p.LastKillAt != nil {
		t := *p.LastKillAt
		cp.LastKillAt = &t
	}
	return &cp
}

func (r *Room) Clone() *Room {
	cp := *r
	cp.AutomationEntities = append([]string(nil), r.AutomationEntities...)
	return &cp
}

func (t *Task) Clone() *Task {
	cp := *t
	if t.AutomationConfig != nil {
		cp.AutomationConfig = make(map[string]string, len(t.AutomationConfig))
		for k, v := range t.AutomationConfig {
			cp.AutomationConfig[k] = v
		}
	}
	return &cp
}
