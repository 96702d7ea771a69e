package continuity

import "maps"

// DevelopmentNotes is guidance for writing a character in the next book.
type DevelopmentNotes struct {
	Name                     string            `json:"name"`
	CurrentArcStage          ArcStage          `json:"current_arc_stage"`
	RecentPersonalityChanges []string          `json:"recent_personality_changes"`
	Relationships            map[string]string `json:"relationships"`
	Knowledge                []string          `json:"knowledge"`
	Abilities                []string          `json:"abilities"`
	Suggestions              []string          `json:"development_suggestions"`
}

const recentChangeLimit = 3

// CharacterDevelopmentNotes returns notes for the named character, or false
// if the store has no such character.
func (s *Store) CharacterDevelopmentNotes(name string) (DevelopmentNotes, bool) {
	c, ok := s.characters[name]
	if !ok {
		return DevelopmentNotes{}, false
	}
	clone := c.Clone()

	recent := clone.PersonalityChanges
	if len(recent) > recentChangeLimit {
		recent = recent[len(recent)-recentChangeLimit:]
	}

	return DevelopmentNotes{
		Name:                     clone.Name,
		CurrentArcStage:          clone.ArcStage,
		RecentPersonalityChanges: append([]string{}, recent...),
		Relationships:            maps.Clone(clone.Relationships),
		Knowledge:                clone.Knowledge,
		Abilities:                clone.Abilities,
		Suggestions:              developmentSuggestions(&clone),
	}, true
}

func developmentSuggestions(c *Character) []string {
	suggestions := []string{}
	switch c.ArcStage {
	case ArcBeginning:
		suggestions = append(suggestions, "Establish the character's core motivation and the conflict that will drive their arc")
	case ArcDevelopment:
		suggestions = append(suggestions, "Show growth through the character's choices and relationships")
	case ArcClimax:
		suggestions = append(suggestions, "Test the character's growth against who they were at the beginning")
	case ArcResolution:
		suggestions = append(suggestions, "Let the character reflect on how far their full arc has taken them")
	}
	if len(c.Relationships) < 2 {
		suggestions = append(suggestions, "Develop more relationships with other characters")
	}
	if len(c.Knowledge) < 3 {
		suggestions = append(suggestions, "Expand what the character knows about the world")
	}
	return suggestions
}
