package cli

import (
	"encoding/json"
	"fmt"

	"github.com/aliskhannn/image-converter/internal/model"
)

// parseActions combines repeated --action commands with an optional JSON
// action list. Commands come first, in flag order.
func parseActions(commands []string, rawJSON string) ([]model.Action, error) {
	actions := make([]model.Action, 0, len(commands))

	for _, c := range commands {
		a, err := model.ParseCommand(c)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	if rawJSON != "" {
		var extra []model.Action
		if err := json.Unmarshal([]byte(rawJSON), &extra); err != nil {
			return nil, fmt.Errorf("parse --actions-json: %w", err)
		}
		for _, a := range extra {
			if err := a.Validate(); err != nil {
				return nil, err
			}
		}
		actions = append(actions, extra...)
	}

	return actions, nil
}
