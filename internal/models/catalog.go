package models

// Language selects which side of a bilingual template is instantiated.
type Language string

const (
	LangJA Language = "ja"
	LangEN Language = "en"
)

func (l Language) Valid() bool { return l == LangJA || l == LangEN }

// Pick returns ja or en depending on l.
func (l Language) Pick(ja, en string) string {
	if l == LangEN {
		return en
	}
	return ja
}

// CategoryID groups tasks by area of preparation.
type CategoryID string

const (
	CategoryPreMarriage   CategoryID = "pre_marriage"
	CategoryVenuePlanning CategoryID = "venue_planning"
	CategoryGuests        CategoryID = "guests"
	CategoryAttireBeauty  CategoryID = "attire_beauty"
	CategoryCeremonyDay   CategoryID = "ceremony_day"
	CategoryPhotoVideo    CategoryID = "photo_video"
	CategoryLegal         CategoryID = "legal"
	CategoryNewLife       CategoryID = "new_life"
	CategoryPostWedding   CategoryID = "post_wedding"
)

// AllCategories in display order.
var AllCategories = []CategoryID{
	CategoryPreMarriage, CategoryVenuePlanning, CategoryGuests, CategoryAttireBeauty,
	CategoryCeremonyDay, CategoryPhotoVideo, CategoryLegal, CategoryNewLife, CategoryPostWedding,
}

type Label struct {
	JA string `json:"ja"`
	EN string `json:"en"`
}

func (l Label) In(lang Language) string { return lang.Pick(l.JA, l.EN) }

var categoryLabels = map[CategoryID]Label{
	CategoryPreMarriage:   {"婚前の準備", "Pre-Marriage Prep"},
	CategoryVenuePlanning: {"式場・プランニング", "Venue & Planning"},
	CategoryGuests:        {"ゲスト関連", "Guest Management"},
	CategoryAttireBeauty:  {"衣装・美容", "Attire & Beauty"},
	CategoryCeremonyDay:   {"式当日の準備", "Ceremony Day"},
	CategoryPhotoVideo:    {"写真・映像", "Photo & Video"},
	CategoryLegal:         {"法的手続き", "Legal Procedures"},
	CategoryNewLife:       {"新生活準備", "New Life Prep"},
	CategoryPostWedding:   {"結婚式後", "Post-Wedding"},
}

func (c CategoryID) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label falls back to the raw id for unknown categories.
func (c CategoryID) Label(lang Language) string {
	if l, ok := categoryLabels[c]; ok {
		return l.In(lang)
	}
	return string(c)
}

// IsCeremony reports whether tasks in c are scheduled against the ceremony
// date rather than the marriage date.
func (c CategoryID) IsCeremony() bool { return c == CategoryCeremonyDay }

// PhaseID is a stage of the preparation timeline.
type PhaseID string

const (
	Phase01 PhaseID = "phase_01"
	Phase02 PhaseID = "phase_02"
	Phase03 PhaseID = "phase_03"
	Phase04 PhaseID = "phase_04"
	Phase05 PhaseID = "phase_05"
	Phase06 PhaseID = "phase_06"
	Phase07 PhaseID = "phase_07"
	Phase08 PhaseID = "phase_08"
	Phase09 PhaseID = "phase_09"
	Phase10 PhaseID = "phase_10"

	FirstPhase = Phase01
	DayOfPhase = Phase09
	PostPhase  = Phase10
)

var AllPhases = []PhaseID{
	Phase01, Phase02, Phase03, Phase04, Phase05,
	Phase06, Phase07, Phase08, Phase09, Phase10,
}

var phaseLabels = map[PhaseID]Label{
	Phase01: {"婚約・婚前準備期", "Engagement & Pre-Wedding"},
	Phase02: {"情報収集・方向性決定期", "Research & Direction"},
	Phase03: {"式場決定・基本計画期", "Venue & Basic Planning"},
	Phase04: {"詳細計画・手配開始期", "Detailed Planning"},
	Phase05: {"本格準備期", "Full Preparation"},
	Phase06: {"詰め作業期", "Finalization"},
	Phase07: {"最終確認期", "Final Confirmation"},
	Phase08: {"直前準備期", "Last-Minute Prep"},
	Phase09: {"挙式当日", "Wedding Day"},
	Phase10: {"挙式後手続き期", "Post-Wedding"},
}

func (p PhaseID) Valid() bool {
	_, ok := phaseLabels[p]
	return ok
}

func (p PhaseID) Label(lang Language) string {
	if l, ok := phaseLabels[p]; ok {
		return l.In(lang)
	}
	return string(p)
}
