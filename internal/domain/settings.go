package domain

import "strings"

// Placeholder values shipped in default configuration; treated as unset.
const (
	PlaceholderPublicKey   = "YOUR_VAPI_PUBLIC_KEY"
	PlaceholderAssistantID = "YOUR_VAPI_ASSISTANT_ID"
	PlaceholderPrivateKey  = "YOUR_VAPI_PRIVATE_KEY_HERE"
)

type Settings struct {
	Vapi    VapiSettings    `json:"vapi"`
	General GeneralSettings `json:"general"`
}

type VapiSettings struct {
	PublicKey   string `json:"publicKey"`
	AssistantID string `json:"assistantId"`
	PrivateKey  string `json:"privateKey"`
}

type GeneralSettings struct {
	CompanyName string `json:"companyName"`
	AdminName   string `json:"adminName"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func DefaultGeneral() GeneralSettings {
	return GeneralSettings{
		CompanyName: "Imperial Estates",
		AdminName:   "Admin User",
		Email:       "admin@imperialestates.com",
	}
}

// UsableKey reports whether k looks like a real credential.
func UsableKey(k string) bool {
	k = strings.TrimSpace(k)
	return k != "" && !strings.Contains(k, "YOUR_VAPI")
}

// Masked returns a copy safe to hand back to clients.
func (s Settings) Masked() Settings {
	out := s
	if k := s.Vapi.PrivateKey; k != "" {
		if len(k) > 4 {
			out.Vapi.PrivateKey = strings.Repeat("*", len(k)-4) + k[len(k)-4:]
		} else {
			out.Vapi.PrivateKey = "****"
		}
	}
	return out
}

func (s Settings) Validate() error {
	return validate.Struct(s)
}
