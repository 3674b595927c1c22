package models

// DefaultTeams returns the built-in support desk used when no roster file is
// configured. Each call returns fresh agent values.
func DefaultTeams() []Team {
	return []Team{
		{
			Name:  "Team A - (8am-4pm)",
			Shift: Day,
			Agents: []Agent{
				NewAgent("TeamLeadA", "Lead A", TeamLead),
				NewAgent("MidLevelA1", "Mid A1", MidLevel),
				NewAgent("MidLevelA2", "Mid A2", MidLevel),
				NewAgent("JuniorA", "Junior A", Junior),
			},
		},
		{
			Name:  "Team B - (4pm-12am)",
			Shift: Evening,
			Agents: []Agent{
				NewAgent("SeniorB", "Senior B", Senior),
				NewAgent("MidLevelB", "Mid B", MidLevel),
				NewAgent("JuniorB1", "Junior B1", Junior),
				NewAgent("JuniorB2", "Junior B2", Junior),
			},
		},
		{
			Name:  "Team C - (12am-8am)",
			Shift: Night,
			Agents: []Agent{
				NewAgent("MidLevelC1", "Mid C1", MidLevel),
				NewAgent("MidLevelC2", "Mid C2", MidLevel),
			},
		},
		{
			Name:  "Team Overflow - (8am-4pm)",
			Shift: Overflow,
			Agents: []Agent{
				NewAgent("Overflow1", "", Junior),
				NewAgent("Overflow2", "", Junior),
				NewAgent("Overflow3", "", Junior),
				NewAgent("Overflow4", "", Junior),
				NewAgent("Overflow5", "", Junior),
				NewAgent("Overflow6", "", Junior),
			},
		},
	}
}
