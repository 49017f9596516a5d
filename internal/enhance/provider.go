package enhance

import (
	"context"
	"fmt"
)

// Provider names accepted by NewCapability.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderOff    = "off"
)

// ProviderConfig selects and configures the analysis provider.
type ProviderConfig struct {
	Provider    string
	GroqModel   string
	GroqBaseURL string
	GeminiModel string
	// GeminiFallbackKey, when set with the groq provider, adds Gemini as a
	// secondary capability.
	GeminiFallbackKey string
}

// NewCapability builds the configured capability for credential.
func NewCapability(ctx context.Context, pc ProviderConfig, credential string) (Capability, error) {
	switch pc.Provider {
	case ProviderGroq, "":
		primary, err := NewGroqClient(credential, pc.GroqModel, pc.GroqBaseURL)
		if err != nil {
			return nil, err
		}
		if pc.GeminiFallbackKey == "" {
			return primary, nil
		}
		secondary, err := NewGeminiClient(ctx, pc.GeminiFallbackKey, pc.GeminiModel)
		if err != nil {
			return primary, nil
		}
		return WithFallback(primary, secondary), nil
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, credential, pc.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOff:
		return nil, fmt.Errorf("enhancement provider is off")
	default:
		return nil, fmt.Errorf("unknown enhancement provider %q", pc.Provider)
	}
}
