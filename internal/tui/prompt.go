package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question on the terminal. The default answer is no.
func Confirm(title, description string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirm prompt failed: %w", err)
	}
	return confirmed, nil
}
