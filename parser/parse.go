package parser

import (
	"chat-router/errors"
	"chat-router/models"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads a roster from CSV and returns its teams in order of first
// appearance. Each row is one agent:
//
//	team, shift, agent id, nickname, seniority
//
// Lines starting with '#' are headers/comments. Shift is Day, Evening, Night
// or Overflow; seniority is Junior, MidLevel, Senior or TeamLead. An empty
// nickname defaults to the agent id. Agent ids must be unique across the file.
func Parse(r io.Reader) ([]models.Team, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var teams []models.Team
	index := make(map[string]int)
	seen := make(map[string]bool)
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}

		if len(record) != 5 {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    errors.ErrInvalidFieldCount,
			}
		}

		teamName := strings.TrimSpace(record[0])
		if teamName == "" {
			return nil, &errors.ParseError{Line: lineNum, Record: record, Err: errors.ErrEmptyTeamName}
		}

		shift, ok := models.ParseShift(record[1])
		if !ok {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %q", errors.ErrInvalidShift, strings.TrimSpace(record[1])),
			}
		}

		id := strings.TrimSpace(record[2])
		if id == "" {
			return nil, &errors.ParseError{Line: lineNum, Record: record, Err: errors.ErrEmptyAgentName}
		}
		if seen[id] {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %s", errors.ErrDuplicateAgent, id),
			}
		}

		seniority, ok := models.ParseSeniority(record[4])
		if !ok {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %q", errors.ErrInvalidSeniority, strings.TrimSpace(record[4])),
			}
		}

		i, exists := index[teamName]
		if !exists {
			i = len(teams)
			index[teamName] = i
			teams = append(teams, models.Team{Name: teamName, Shift: shift})
		} else if teams[i].Shift != shift {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %s is %s", errors.ErrTeamShiftMismatch, teamName, teams[i].Shift),
			}
		}

		seen[id] = true
		teams[i].Agents = append(teams[i].Agents, models.NewAgent(id, strings.TrimSpace(record[3]), seniority))
	}

	return teams, nil
}

// ParseFile opens path and parses it as a roster.
func ParseFile(path string) ([]models.Team, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening roster: %w", err)
	}
	defer f.Close()

	teams, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return teams, nil
}
