package types

type ProviderID string

const (
	ProviderDuckDuckGo ProviderID = "duckduckgo"
	ProviderSearXNG    ProviderID = "searxng"
	ProviderTavily     ProviderID = "tavily"
	ProviderExa        ProviderID = "exa"
	ProviderBocha      ProviderID = "bocha"
	ProviderZhipu      ProviderID = "zhipu"
)

// ProviderConfig represents search provider configuration
type ProviderConfig struct {
	ID   ProviderID `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`

	// API settings. DuckDuckGo falls back to its public HTML endpoint.
	APIHost string `json:"api_host" yaml:"api_host"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// SearXNG Basic Auth
	BasicAuthUsername string `json:"basic_auth_username,omitempty" yaml:"basic_auth_username,omitempty"`
	BasicAuthPassword string `json:"basic_auth_password,omitempty" yaml:"basic_auth_password,omitempty"`

	Timeout    int `json:"timeout,omitempty" yaml:"timeout,omitempty"`         // seconds
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"` // transport-level attempts, default 1
}

// Validate validates the provider configuration
func (c *ProviderConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidProviderID
	}
	if c.Name == "" {
		return ErrInvalidProviderName
	}

	switch c.ID {
	case ProviderDuckDuckGo:
		return nil
	case ProviderSearXNG:
		if c.APIHost == "" {
			return ErrInvalidAPIHost
		}
		if c.BasicAuthUsername != "" && c.BasicAuthPassword == "" {
			return ErrMissingBasicAuthPassword
		}
	default:
		if c.APIHost == "" {
			return ErrInvalidAPIHost
		}
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	}
	return nil
}
