package models

type PrenupSectionID string

const (
	SectionAssets   PrenupSectionID = "assets"
	SectionDebts    PrenupSectionID = "debts"
	SectionIncome   PrenupSectionID = "income"
	SectionProperty PrenupSectionID = "property"
	SectionOther    PrenupSectionID = "other"
)

var prenupSectionLabels = map[PrenupSectionID]Label{
	SectionAssets:   {"資産の取り扱い", "Asset Management"},
	SectionDebts:    {"負債の取り扱い", "Debt Management"},
	SectionIncome:   {"収入・生活費", "Income & Living Expenses"},
	SectionProperty: {"不動産・大型資産", "Property & Major Assets"},
	SectionOther:    {"その他の取り決め", "Other Agreements"},
}

func (s PrenupSectionID) Valid() bool {
	_, ok := prenupSectionLabels[s]
	return ok
}

func (s PrenupSectionID) Label(lang Language) string {
	if l, ok := prenupSectionLabels[s]; ok {
		return l.In(lang)
	}
	return string(s)
}

// PrenupItem is one entry of the prenuptial discussion checklist.
type PrenupItem struct {
	ID          string          `json:"id"`
	TemplateID  string          `json:"template_id,omitempty"` // catalog entry it was expanded from
	SectionID   PrenupSectionID `json:"section_id"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Notes       string          `json:"notes"`
}

type PrenupPatch struct {
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

func (p PrenupPatch) Apply(item *PrenupItem) {
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
}
