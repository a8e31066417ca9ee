package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"weddingplan/internal/dates"
)

// Settings is the per-user singleton of anchor dates and preferences.
type Settings struct {
	MarriageDate *dates.Date `json:"marriage_date"`
	CeremonyDate *dates.Date `json:"ceremony_date"`
	HasCeremony  bool        `json:"has_ceremony"`
	Partner1Name string      `json:"partner1_name"`
	Partner2Name string      `json:"partner2_name"`
	Language     Language    `json:"language"`
	TotalBudget  int64       `json:"total_budget"`
}

const DefaultTotalBudget int64 = 3_500_000

func DefaultSettings() Settings {
	return Settings{
		HasCeremony: true,
		Language:    LangJA,
		TotalBudget: DefaultTotalBudget,
	}
}

// IsDefault reports whether s carries nothing a user has entered.
func (s Settings) IsDefault() bool {
	d := DefaultSettings()
	return s.MarriageDate == nil && s.CeremonyDate == nil &&
		s.HasCeremony == d.HasCeremony &&
		s.Partner1Name == d.Partner1Name && s.Partner2Name == d.Partner2Name &&
		s.Language == d.Language && s.TotalBudget == d.TotalBudget
}

// SettingsPatch merges over Settings. The nullable dates need explicit clear
// flags because a nil pointer means "leave unchanged".
type SettingsPatch struct {
	MarriageDate      *dates.Date
	ClearMarriageDate bool
	CeremonyDate      *dates.Date
	ClearCeremonyDate bool
	HasCeremony       *bool
	Partner1Name      *string
	Partner2Name      *string
	Language          *Language
	TotalBudget       *int64
}

func (p SettingsPatch) Validate() error {
	if p.Language != nil && !p.Language.Valid() {
		return fmt.Errorf("%w: unknown language %q", ErrInvalidPatch, *p.Language)
	}
	if p.TotalBudget != nil && *p.TotalBudget < 0 {
		return fmt.Errorf("%w: total_budget must not be negative", ErrInvalidPatch)
	}
	return nil
}

func (s *Settings) Apply(p SettingsPatch) {
	switch {
	case p.ClearMarriageDate:
		s.MarriageDate = nil
	case p.MarriageDate != nil:
		d := *p.MarriageDate
		s.MarriageDate = &d
	}
	switch {
	case p.ClearCeremonyDate:
		s.CeremonyDate = nil
	case p.CeremonyDate != nil:
		d := *p.CeremonyDate
		s.CeremonyDate = &d
	}
	if p.HasCeremony != nil {
		s.HasCeremony = *p.HasCeremony
	}
	if p.Partner1Name != nil {
		s.Partner1Name = *p.Partner1Name
	}
	if p.Partner2Name != nil {
		s.Partner2Name = *p.Partner2Name
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.TotalBudget != nil {
		s.TotalBudget = *p.TotalBudget
	}
}

// UnmarshalJSON treats "marriage_date": null (or "") as a clear.
func (p *SettingsPatch) UnmarshalJSON(b []byte) error {
	var raw struct {
		MarriageDate json.RawMessage `json:"marriage_date"`
		CeremonyDate json.RawMessage `json:"ceremony_date"`
		HasCeremony  *bool           `json:"has_ceremony"`
		Partner1Name *string         `json:"partner1_name"`
		Partner2Name *string         `json:"partner2_name"`
		Language     *Language       `json:"language"`
		TotalBudget  *int64          `json:"total_budget"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = SettingsPatch{
		HasCeremony:  raw.HasCeremony,
		Partner1Name: raw.Partner1Name,
		Partner2Name: raw.Partner2Name,
		Language:     raw.Language,
		TotalBudget:  raw.TotalBudget,
	}
	var err error
	if p.MarriageDate, p.ClearMarriageDate, err = decodeOptionalDate(raw.MarriageDate); err != nil {
		return fmt.Errorf("marriage_date: %w", err)
	}
	if p.CeremonyDate, p.ClearCeremonyDate, err = decodeOptionalDate(raw.CeremonyDate); err != nil {
		return fmt.Errorf("ceremony_date: %w", err)
	}
	return nil
}

func decodeOptionalDate(raw json.RawMessage) (*dates.Date, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return nil, true, nil
	}
	var d dates.Date
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false, err
	}
	return &d, false, nil
}
