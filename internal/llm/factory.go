// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/journal-club/pkg/types"
)

// New builds the Model for an endpoint configuration. httpClient may be nil.
func New(ep types.ModelEndpoint, httpClient *http.Client) (Model, error) {
	switch ep.Provider {
	case types.ProviderOpenAI:
		return NewOpenAI(ep, httpClient), nil
	case types.ProviderAzure:
		return NewAzure(ep, httpClient), nil
	case types.ProviderAnthropic:
		return NewAnthropic(ep, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", ep.Provider)
	}
}
