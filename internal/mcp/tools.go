package mcp

import (
	"context"
	"fmt"
	"maps"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
)

type BookInput struct {
	ForBookNumber *int `json:"for_book_number,omitempty" jsonschema:"book about to be written; defaults to the current book"`
}

type GetCharacterNotesInput struct {
	Name string `json:"name" jsonschema:"character name"`
}

type ListCharactersInput struct {
	Status string `json:"status,omitempty" jsonschema:"only characters with this status, case-insensitive"`
}

type ListPlotThreadsInput struct {
	Status     string `json:"status,omitempty" jsonschema:"active, resolved, dormant, or abandoned"`
	Importance string `json:"importance,omitempty" jsonschema:"major, minor, or subplot"`
}

type ListWorldElementsInput struct {
	Type string `json:"type,omitempty" jsonschema:"element type filter"`
}

type StartNewBookInput struct {
	BookNumber int `json:"book_number" jsonschema:"book to start; must not be before the current book"`
}

type GetSchemaInput struct{}

type CharacterOutput struct {
	Name               string            `json:"name"`
	CurrentStatus      string            `json:"current_status"`
	Location           string            `json:"location"`
	ArcStage           string            `json:"character_arc_stage"`
	LastAppearanceBook int               `json:"last_appearance_book"`
	Relationships      map[string]string `json:"relationships"`
	Abilities          []string          `json:"abilities"`
	Knowledge          []string          `json:"knowledge"`
}

type PlotThreadOutput struct {
	ThreadID            string   `json:"thread_id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Status              string   `json:"status"`
	ImportanceLevel     string   `json:"importance_level"`
	IntroducedBook      int      `json:"introduced_book"`
	LastMentionedBook   int      `json:"last_mentioned_book"`
	ResolutionBook      *int     `json:"resolution_book,omitempty"`
	ConnectedCharacters []string `json:"connected_characters"`
}

type WorldElementOutput struct {
	ElementID           string         `json:"element_id"`
	Name                string         `json:"name"`
	Type                string         `json:"type"`
	Description         string         `json:"description"`
	CurrentState        string         `json:"current_state"`
	FirstIntroducedBook int            `json:"first_introduced_book"`
	LastMentionedBook   int            `json:"last_mentioned_book"`
	RulesAndProperties  map[string]any `json:"rules_and_properties"`
}

type TimelineEventOutput struct {
	BookNumber int            `json:"book_number"`
	Title      string         `json:"title"`
	Details    map[string]any `json:"details,omitempty"`
}

type StatsOutput struct {
	TotalCharacters    int `json:"total_characters"`
	TotalPlotThreads   int `json:"total_plot_threads"`
	TotalWorldElements int `json:"total_world_elements"`
	TotalEvents        int `json:"total_timeline_events"`
	ActiveCharacters   int `json:"active_characters"`
	ActivePlotThreads  int `json:"active_plot_threads"`
}

type SummaryOutput struct {
	SeriesTitle              string                `json:"series_title"`
	ForBookNumber            int                   `json:"for_book_number"`
	TotalBooksPlanned        int                   `json:"total_books_planned"`
	ActiveCharacters         []CharacterOutput     `json:"active_characters"`
	ActivePlotThreads        []PlotThreadOutput    `json:"active_plot_threads"`
	EstablishedWorldElements []WorldElementOutput  `json:"established_world_elements"`
	TimelineEvents           []TimelineEventOutput `json:"timeline_events"`
	Stats                    StatsOutput           `json:"summary_stats"`
}

type PromptContextOutput struct {
	ForBookNumber int    `json:"for_book_number"`
	Context       string `json:"context"`
}

type CharacterNotesOutput struct {
	Name                     string            `json:"name"`
	CurrentArcStage          string            `json:"current_arc_stage"`
	RecentPersonalityChanges []string          `json:"recent_personality_changes"`
	Relationships            map[string]string `json:"relationships"`
	Knowledge                []string          `json:"knowledge"`
	Abilities                []string          `json:"abilities"`
	Suggestions              []string          `json:"development_suggestions"`
}

type ListCharactersOutput struct {
	Characters []CharacterOutput `json:"characters"`
}

type ListPlotThreadsOutput struct {
	PlotThreads []PlotThreadOutput `json:"plot_threads"`
}

type ListWorldElementsOutput struct {
	WorldElements []WorldElementOutput `json:"world_elements"`
}

type StartNewBookOutput struct {
	CurrentBookNumber int `json:"current_book_number"`
}

type SchemaOutput struct {
	Version     int                `json:"version"`
	EntityTypes []EntityTypeOutput `json:"entity_types"`
}

type EntityTypeOutput struct {
	Name       string           `json:"name"`
	Key        string           `json:"key,omitempty"`
	Properties []PropertyOutput `json:"properties"`
}

type PropertyOutput struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Values   []string `json:"values,omitempty"`
	Default  any      `json:"default,omitempty"`
	Required bool     `json:"required,omitempty"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_continuity_summary",
		Description: "Characters, plot threads, world elements and events established before a book",
	}, s.handleGetContinuitySummary)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_prompt_context",
		Description: "Continuity summary rendered as text for a generation prompt",
	}, s.handleGetPromptContext)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_character_notes",
		Description: "Development notes and suggestions for one character",
	}, s.handleGetCharacterNotes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_characters",
		Description: "List characters with an optional status filter",
	}, s.handleListCharacters)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_plot_threads",
		Description: "List plot threads with optional status and importance filters",
	}, s.handleListPlotThreads)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_world_elements",
		Description: "List world elements with an optional type filter",
	}, s.handleListWorldElements)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "start_new_book",
		Description: "Advance the series to a new book and save",
	}, s.handleStartNewBook)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_schema",
		Description: "Return the entity schema used for validation",
	}, s.handleGetSchema)
}

func forBook(input BookInput) int {
	if input.ForBookNumber == nil {
		return -1
	}
	return *input.ForBookNumber
}

func (s *Server) handleGetContinuitySummary(ctx context.Context, req *sdk.CallToolRequest, input BookInput) (*sdk.CallToolResult, SummaryOutput, error) {
	if input.ForBookNumber != nil && *input.ForBookNumber < 0 {
		return nil, SummaryOutput{}, fmt.Errorf("for_book_number must not be negative")
	}
	return nil, summaryOutput(s.series.Summary(forBook(input))), nil
}

func (s *Server) handleGetPromptContext(ctx context.Context, req *sdk.CallToolRequest, input BookInput) (*sdk.CallToolResult, PromptContextOutput, error) {
	if input.ForBookNumber != nil && *input.ForBookNumber < 0 {
		return nil, PromptContextOutput{}, fmt.Errorf("for_book_number must not be negative")
	}
	summary := s.series.Summary(forBook(input))
	return nil, PromptContextOutput{
		ForBookNumber: summary.ForBookNumber,
		Context:       s.series.PromptContext(summary.ForBookNumber),
	}, nil
}

func (s *Server) handleGetCharacterNotes(ctx context.Context, req *sdk.CallToolRequest, input GetCharacterNotesInput) (*sdk.CallToolResult, CharacterNotesOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, CharacterNotesOutput{}, fmt.Errorf("name is required")
	}
	notes, err := s.series.CharacterNotes(input.Name)
	if err != nil {
		return nil, CharacterNotesOutput{}, err
	}
	return nil, CharacterNotesOutput{
		Name:                     notes.Name,
		CurrentArcStage:          string(notes.CurrentArcStage),
		RecentPersonalityChanges: notes.RecentPersonalityChanges,
		Relationships:            notes.Relationships,
		Knowledge:                notes.Knowledge,
		Abilities:                notes.Abilities,
		Suggestions:              notes.Suggestions,
	}, nil
}

func (s *Server) handleListCharacters(ctx context.Context, req *sdk.CallToolRequest, input ListCharactersInput) (*sdk.CallToolResult, ListCharactersOutput, error) {
	output := make([]CharacterOutput, 0)
	for _, c := range s.series.Characters() {
		if input.Status != "" && !strings.EqualFold(strings.TrimSpace(c.CurrentStatus), strings.TrimSpace(input.Status)) {
			continue
		}
		output = append(output, characterOutput(c))
	}
	return nil, ListCharactersOutput{Characters: output}, nil
}

func (s *Server) handleListPlotThreads(ctx context.Context, req *sdk.CallToolRequest, input ListPlotThreadsInput) (*sdk.CallToolResult, ListPlotThreadsOutput, error) {
	if input.Status != "" && !continuity.ValidThreadStatuses[continuity.ThreadStatus(input.Status)] {
		return nil, ListPlotThreadsOutput{}, fmt.Errorf("unknown status %q", input.Status)
	}
	if input.Importance != "" && !continuity.ValidImportances[continuity.Importance(input.Importance)] {
		return nil, ListPlotThreadsOutput{}, fmt.Errorf("unknown importance %q", input.Importance)
	}

	output := make([]PlotThreadOutput, 0)
	for _, p := range s.series.PlotThreads() {
		if input.Status != "" && string(p.Status) != input.Status {
			continue
		}
		if input.Importance != "" && string(p.ImportanceLevel) != input.Importance {
			continue
		}
		output = append(output, plotThreadOutput(p))
	}
	return nil, ListPlotThreadsOutput{PlotThreads: output}, nil
}

func (s *Server) handleListWorldElements(ctx context.Context, req *sdk.CallToolRequest, input ListWorldElementsInput) (*sdk.CallToolResult, ListWorldElementsOutput, error) {
	output := make([]WorldElementOutput, 0)
	for _, w := range s.series.WorldElements() {
		if input.Type != "" && !strings.EqualFold(w.Type, input.Type) {
			continue
		}
		output = append(output, worldElementOutput(w))
	}
	return nil, ListWorldElementsOutput{WorldElements: output}, nil
}

func (s *Server) handleStartNewBook(ctx context.Context, req *sdk.CallToolRequest, input StartNewBookInput) (*sdk.CallToolResult, StartNewBookOutput, error) {
	if err := s.series.StartNewBook(input.BookNumber); err != nil {
		return nil, StartNewBookOutput{}, err
	}
	return nil, StartNewBookOutput{CurrentBookNumber: input.BookNumber}, nil
}

func (s *Server) handleGetSchema(ctx context.Context, req *sdk.CallToolRequest, input GetSchemaInput) (*sdk.CallToolResult, SchemaOutput, error) {
	return nil, schemaOutputFromConfig(s.schema), nil
}

func schemaOutputFromConfig(schema *config.Schema) SchemaOutput {
	if schema == nil {
		return SchemaOutput{}
	}

	out := SchemaOutput{
		Version:     schema.Version,
		EntityTypes: make([]EntityTypeOutput, 0, len(schema.EntityTypes)),
	}
	for _, entityType := range schema.EntityTypes {
		entityOut := EntityTypeOutput{
			Name:       entityType.Name,
			Key:        entityType.Key,
			Properties: make([]PropertyOutput, 0, len(entityType.Properties)),
		}
		for _, prop := range entityType.Properties {
			entityOut.Properties = append(entityOut.Properties, PropertyOutput{
				Name:     prop.Name,
				Type:     prop.Type,
				Values:   prop.Values,
				Default:  prop.Default,
				Required: prop.Required,
			})
		}
		out.EntityTypes = append(out.EntityTypes, entityOut)
	}
	return out
}

func summaryOutput(sum continuity.Summary) SummaryOutput {
	out := SummaryOutput{
		SeriesTitle:              sum.SeriesTitle,
		ForBookNumber:            sum.ForBookNumber,
		TotalBooksPlanned:        sum.TotalBooksPlanned,
		ActiveCharacters:         make([]CharacterOutput, 0, len(sum.ActiveCharacters)),
		ActivePlotThreads:        make([]PlotThreadOutput, 0, len(sum.ActivePlotThreads)),
		EstablishedWorldElements: make([]WorldElementOutput, 0, len(sum.EstablishedWorldElements)),
		TimelineEvents:           make([]TimelineEventOutput, 0, len(sum.TimelineEvents)),
		Stats:                    StatsOutput(sum.Stats),
	}
	for _, c := range sum.ActiveCharacters {
		out.ActiveCharacters = append(out.ActiveCharacters, characterOutput(c))
	}
	for _, p := range sum.ActivePlotThreads {
		out.ActivePlotThreads = append(out.ActivePlotThreads, plotThreadOutput(p))
	}
	for _, w := range sum.EstablishedWorldElements {
		out.EstablishedWorldElements = append(out.EstablishedWorldElements, worldElementOutput(w))
	}
	for _, e := range sum.TimelineEvents {
		out.TimelineEvents = append(out.TimelineEvents, TimelineEventOutput{
			BookNumber: e.BookNumber,
			Title:      e.Title,
			Details:    maps.Clone(e.Details),
		})
	}
	return out
}

func characterOutput(c continuity.Character) CharacterOutput {
	return CharacterOutput{
		Name:               c.Name,
		CurrentStatus:      c.CurrentStatus,
		Location:           c.Location,
		ArcStage:           string(c.ArcStage),
		LastAppearanceBook: c.LastAppearanceBook,
		Relationships:      maps.Clone(c.Relationships),
		Abilities:          append([]string{}, c.Abilities...),
		Knowledge:          append([]string{}, c.Knowledge...),
	}
}

func plotThreadOutput(p continuity.PlotThread) PlotThreadOutput {
	return PlotThreadOutput{
		ThreadID:            p.ThreadID,
		Name:                p.Name,
		Description:         p.Description,
		Status:              string(p.Status),
		ImportanceLevel:     string(p.ImportanceLevel),
		IntroducedBook:      p.IntroducedBook,
		LastMentionedBook:   p.LastMentionedBook,
		ResolutionBook:      p.ResolutionBook,
		ConnectedCharacters: append([]string{}, p.ConnectedCharacters...),
	}
}

func worldElementOutput(w continuity.WorldElement) WorldElementOutput {
	return WorldElementOutput{
		ElementID:           w.ElementID,
		Name:                w.Name,
		Type:                w.Type,
		Description:         w.Description,
		CurrentState:        w.CurrentState,
		FirstIntroducedBook: w.FirstIntroducedBook,
		LastMentionedBook:   w.LastMentionedBook,
		RulesAndProperties:  maps.Clone(w.RulesAndProperties),
	}
}
