package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Nikman800/GambaGame/models"
	"github.com/Nikman800/GambaGame/services"
)

// participantList accepts either a JSON array of names or one newline separated string.
type participantList []string

func (p *participantList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errors.New("participants must be an array of names or a newline separated string")
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	*p = out
	return nil
}

type createBracketRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	Description    string          `json:"description" validate:"max=1000"`
	Type           string          `json:"type" validate:"required,bracket_type"`
	Participants   participantList `json:"participants" validate:"required,min=2,max=256,dive,required,max=100,not_bye"`
	StartingPoints int             `json:"starting_points" validate:"gte=0,max=1000000000"`
	IsOpen         bool            `json:"is_open"`
}

func (req createBracketRequest) toInput() services.CreateBracketInput {
	return services.CreateBracketInput{
		Name:           req.Name,
		Description:    req.Description,
		Type:           models.BracketType(req.Type),
		Participants:   req.Participants,
		StartingPoints: req.StartingPoints,
		IsOpen:         req.IsOpen,
	}
}

type updateBracketRequest struct {
	Name           *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Description    *string         `json:"description" validate:"omitempty,max=1000"`
	Type           *string         `json:"type" validate:"omitempty,bracket_type"`
	Participants   participantList `json:"participants" validate:"omitempty,min=2,max=256,dive,required,max=100,not_bye"`
	StartingPoints *int            `json:"starting_points" validate:"omitempty,gte=0,max=1000000000"`
}

func (req updateBracketRequest) toInput() services.UpdateBracketInput {
	input := services.UpdateBracketInput{
		Name:           req.Name,
		Description:    req.Description,
		Participants:   req.Participants,
		StartingPoints: req.StartingPoints,
	}
	if req.Type != nil {
		t := models.BracketType(*req.Type)
		input.Type = &t
	}
	return input
}

type submitResultRequest struct {
	Winner string `json:"winner" validate:"required,max=100"`
}

type placeBetRequest struct {
	Player string `json:"player" validate:"required,max=100"`
	Amount int    `json:"amount" validate:"gt=0"`
}
