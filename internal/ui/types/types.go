package types

// =============================================================================
// AUTHENTICATION
// =============================================================================
// These types are shared to avoid circular imports between auth ↔ client ↔ handlers

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login. Only name is guaranteed.
type LoginResponse struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
}

// SignupRequest is the body of POST /auth/signup built from the wizard state
type SignupRequest struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	Role              string   `json:"role"`
	TotalHoursPerWeek string   `json:"totalHoursPerWeek"`
	AvailableHours    string   `json:"availableHours"`
	Skills            []string `json:"skills"`
	Department        string   `json:"department,omitempty"`
}

// SignupResponse is returned by POST /auth/signup
type SignupResponse struct {
	Token   string `json:"token,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// User is the profile stored in the user cookie after a successful login/signup
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Initial returns the first letter of the user's name for the avatar
func (u User) Initial() string {
	for _, r := range u.Name {
		if r != ' ' {
			return string(r)
		}
	}
	for _, r := range u.Email {
		return string(r)
	}
	return "?"
}

// =============================================================================
// CV EXTRACTION
// =============================================================================

// SkillSummary holds the categorised skills returned by POST /cv/extract
type SkillSummary struct {
	CoreHardSkills   []string `json:"core_hard_skills"`
	CoreToolsAndTech []string `json:"core_tools_and_tech"`
	CoreSoftSkills   []string `json:"core_soft_skills"`
	CoreLanguages    []string `json:"core_languages"`
}

// ExtractionResponse is returned by POST /cv/extract
type ExtractionResponse struct {
	Filename string       `json:"filename,omitempty"`
	Skills   []string     `json:"skills,omitempty"`
	Summary  SkillSummary `json:"summary"`
}

// SaveSkillsRequest is the body of POST /cv/save-skills
type SaveSkillsRequest struct {
	Skills []string `json:"skills"`
}

// SaveSkillsResponse is returned by POST /cv/save-skills
type SaveSkillsResponse struct {
	SavedSkills int `json:"saved_skills"`
}

// =============================================================================
// API ERRORS
// =============================================================================

// FieldError is one entry of a structured validation error list
type FieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}
