package models

// TaskTemplate is the bilingual static definition a Task is expanded from.
type TaskTemplate struct {
	TaskID              string            `yaml:"task_id"`
	CategoryID          CategoryID        `yaml:"category_id"`
	PhaseID             PhaseID           `yaml:"phase_id"`
	Name                string            `yaml:"name"`
	NameEn              string            `yaml:"name_en"`
	Description         string            `yaml:"description"`
	DescriptionEn       string            `yaml:"description_en"`
	RecommendedTiming   string            `yaml:"recommended_timing"`
	RecommendedTimingEn string            `yaml:"recommended_timing_en"`
	MonthsBefore        int               `yaml:"months_before"`
	Subtasks            []SubtaskTemplate `yaml:"subtasks"`
	Notes               []string          `yaml:"notes"`
	NotesEn             []string          `yaml:"notes_en"`
	BudgetEstimateMin   int64             `yaml:"budget_estimate_min"`
	BudgetEstimateMax   int64             `yaml:"budget_estimate_max"`
}

type SubtaskTemplate struct {
	Label   string `yaml:"label"`
	LabelEn string `yaml:"label_en"`
}

type PrenupTemplate struct {
	ID            string          `yaml:"id"`
	SectionID     PrenupSectionID `yaml:"section_id"`
	Label         string          `yaml:"label"`
	LabelEn       string          `yaml:"label_en"`
	Description   string          `yaml:"description"`
	DescriptionEn string          `yaml:"description_en"`
}
