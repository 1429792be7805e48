package model

// Question is one application question with the candidate's free-text response.
type Question struct {
	Question       string  `json:"question"`
	Response       string  `json:"response"`
	PointsObtained float64 `json:"points_obtained"`
	TotalPoints    float64 `json:"total_points"`
	Feedback       string  `json:"feedback,omitempty"`
}

// BackendScore is the rubric score computed by the HR service. TotalScore is on a
// 0-10 scale.
type BackendScore struct {
	ExperienceScore    float64 `json:"experience_score"`
	LocationScore      float64 `json:"location_score"`
	QualificationScore float64 `json:"qualification_score"`
	SalaryScore        float64 `json:"salary_score"`
	TotalScore         float64 `json:"total_score"`
}

// Performance is the qualitative tier of a published score.
type Performance struct {
	Level   string `json:"level"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

// Consistency compares the locally derived score against the backend score.
// It is diagnostic only.
type Consistency struct {
	Checked    bool    `json:"checked"`
	Normalized float64 `json:"normalized"`
	Drift      float64 `json:"drift"`
	Consistent bool    `json:"consistent"`
}

// Application is the evaluated (candidate, job) pair.
type Application struct {
	CandidateID        string        `json:"candidate_id"`
	JobID              string        `json:"job_id"`
	Questions          []Question    `json:"questions"`
	QuestionsAvailable bool          `json:"questions_available"`
	BackendScore       *BackendScore `json:"backend_score,omitempty"`
	ScoreAvailable     bool          `json:"score_available"`
	Score              *float64      `json:"score,omitempty"`
	DerivedScore       float64       `json:"derived_score"`
	MaxDerivedScore    float64       `json:"max_derived_score"`
	Performance        *Performance  `json:"performance,omitempty"`
	Consistency        Consistency   `json:"consistency"`
	Missing            []string      `json:"missing,omitempty"`
}

// Names of the independent sources feeding an Application or Profile.
const (
	SourceQuestions    = "questions"
	SourceScore        = "score"
	SourcePersonalInfo = "personal_info"
	SourceEducation    = "education"
	SourceExperience   = "experience"
	SourceSkills       = "skills"
	SourceApplicants   = "applicants"
	SourceInterviews   = "interviews"
	SourceOffers       = "offers"
)
