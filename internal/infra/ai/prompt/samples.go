package prompt

// SampleThreat is a reference entry shown next to the query box
type SampleThreat struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	AttackVectors []string `json:"attack_vectors"`
	TTPs          []string `json:"ttps"`
	Severity      string   `json:"severity"`
}

// SampleThreats returns a fresh copy of the built-in catalog.
func SampleThreats() []SampleThreat {
	return []SampleThreat{
		{
			Name:          "Volt_Typhoon",
			Description:   "A state-sponsored threat actor targeting critical infrastructure",
			AttackVectors: []string{"Living off the land", "Credential theft", "Network infiltration"},
			TTPs:          []string{"T1078", "T1133", "T1505.003"},
			Severity:      "High",
		},
		{
			Name:          "BlackCat_Ransomware",
			Description:   "Sophisticated ransomware operation targeting multiple sectors",
			AttackVectors: []string{"Phishing", "RDP exploitation", "Supply chain compromise"},
			TTPs:          []string{"T1566", "T1110", "T1195"},
			Severity:      "Critical",
		},
	}
}
