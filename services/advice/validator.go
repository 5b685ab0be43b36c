package advice

import (
	"strings"

	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// Input is the raw advice request as received from the client
type Input struct {
	Prompt   string `json:"prompt" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	Title    string `json:"title,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Validator checks required fields and fills defaults. It never touches network or storage
type Validator struct {
	defaultProvider string
}

// NewValidator creates a validator. An empty default selects OpenAI
func NewValidator(defaultProvider string) *Validator {
	if defaultProvider == "" {
		defaultProvider = string(providers.OpenAI)
	}
	return &Validator{defaultProvider: defaultProvider}
}

// Validate returns a routable request or a *utils.ValidationError listing missing fields
func (v *Validator) Validate(in Input) (routing.Request, error) {
	// Whitespace-only values count as missing
	check := in
	check.Prompt = strings.TrimSpace(in.Prompt)
	check.UserID = strings.TrimSpace(in.UserID)
	if err := utils.ValidateStruct(&check); err != nil {
		return routing.Request{}, err
	}

	title := in.Title
	if strings.TrimSpace(title) == "" {
		title = models.DefaultTitle
	}

	selector := strings.TrimSpace(in.Provider)
	if selector == "" {
		selector = v.defaultProvider
	}

	return routing.Request{
		Prompt:           in.Prompt,
		RequesterID:      check.UserID,
		Title:            title,
		ProviderSelector: selector,
	}, nil
}
