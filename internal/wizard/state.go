// Package wizard implements the two-step signup flow as a value (State) moved by pure reducer functions.
//
// Step 1 collects credentials. Step 2 sets up the profile and depends on the role: employees go through an upload
// and skills screen (sub-step 1) and an hours screen (sub-step 2), project managers have a single flat screen.
// The account is created once, when the final step is submitted.
package wizard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/constella-app/constella-web/internal/skills"
)

type Role string

const (
	RoleEmployee       Role = "employee"
	RoleProjectManager Role = "project-manager"

	DefaultRole = RoleProjectManager
)

// ParseRole accepts the role names used by the forms ("company" is an alias for project-manager)
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleEmployee):
		return RoleEmployee, true
	case string(RoleProjectManager), "company", "project_manager":
		return RoleProjectManager, true
	default:
		return "", false
	}
}

func (r Role) Label() string {
	if r == RoleEmployee {
		return "Employee"
	}
	return "Project Manager"
}

// Stage is one of CredentialsStage, EmployeeProfile or CompanyProfile
type Stage interface {
	// Step is 1 for credentials and 2 for the profile screens
	Step() int
	kind() string
}

type CredentialsStage struct{}

// EmployeeProfile is step 2 for employees. SubStep 1 is CV upload and skills, 2 is hours.
type EmployeeProfile struct {
	SubStep int
}

// CompanyProfile is the flat step 2 for project managers
type CompanyProfile struct{}

func (CredentialsStage) Step() int { return 1 }
func (EmployeeProfile) Step() int  { return 2 }
func (CompanyProfile) Step() int   { return 2 }

func (CredentialsStage) kind() string { return "credentials" }
func (EmployeeProfile) kind() string  { return "employee" }
func (CompanyProfile) kind() string   { return "company" }

// profileStage is the first profile screen for role
func profileStage(role Role) Stage {
	if role == RoleEmployee {
		return EmployeeProfile{SubStep: 1}
	}
	return CompanyProfile{}
}

type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile holds the step 2 inputs as typed by the user
type Profile struct {
	TotalHours     string `json:"total_hours"`
	AvailableHours string `json:"available_hours"`
	Department     string `json:"department"`
}

// FileRef describes the last CV selected for upload
type FileRef struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SizeKB is the size rounded to the nearest KB
func (f FileRef) SizeKB() int64 {
	return (f.Size + 512) / 1024
}

// State is everything the signup form shows. The zero value is not valid, use Initial.
type State struct {
	Stage       Stage
	Role        Role
	Credentials Credentials
	Profile     Profile
	Skills      skills.Set
	File        *FileRef

	Loading     bool
	IsError     bool
	Message     string
	FieldErrors FieldErrors
}

// Initial is the state of a new visitor: step 1, default role, everything empty
func Initial() State {
	return State{
		Stage: CredentialsStage{},
		Role:  DefaultRole,
	}
}

func (s State) Step() int {
	if s.Stage == nil {
		return 1
	}
	return s.Stage.Step()
}

// SubStep is the employee sub-step, 0 outside EmployeeProfile
func (s State) SubStep() int {
	if e, ok := s.Stage.(EmployeeProfile); ok {
		return e.SubStep
	}
	return 0
}

func (s State) IsEmployee() bool {
	return s.Role == RoleEmployee
}

// clone copies everything the reducers may modify in place
func (s State) clone() State {
	c := s
	if c.Stage == nil {
		c.Stage = CredentialsStage{}
	}
	c.Skills = s.Skills.Clone()
	c.FieldErrors = s.FieldErrors.clone()
	if s.File != nil {
		f := *s.File
		c.File = &f
	}
	return c
}

type stageJSON struct {
	Kind    string `json:"kind"`
	SubStep int    `json:"sub_step,omitempty"`
}

type stateJSON struct {
	Stage       stageJSON   `json:"stage"`
	Role        Role        `json:"role"`
	Credentials Credentials `json:"credentials"`
	Profile     Profile     `json:"profile"`
	Skills      skills.Set  `json:"skills"`
	File        *FileRef    `json:"file,omitempty"`
	Loading     bool        `json:"loading,omitempty"`
	IsError     bool        `json:"is_error,omitempty"`
	Message     string      `json:"message,omitempty"`
	FieldErrors FieldErrors `json:"field_errors,omitempty"`
}

func (s State) MarshalJSON() ([]byte, error) {
	stage := s.Stage
	if stage == nil {
		stage = CredentialsStage{}
	}
	sj := stageJSON{Kind: stage.kind()}
	if e, ok := stage.(EmployeeProfile); ok {
		sj.SubStep = e.SubStep
	}

	return json.Marshal(stateJSON{
		Stage:       sj,
		Role:        s.Role,
		Credentials: s.Credentials,
		Profile:     s.Profile,
		Skills:      s.Skills,
		File:        s.File,
		Loading:     s.Loading,
		IsError:     s.IsError,
		Message:     s.Message,
		FieldErrors: s.FieldErrors,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var sj stateJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}

	var stage Stage
	switch sj.Stage.Kind {
	case "credentials", "":
		stage = CredentialsStage{}
	case "employee":
		if sj.Stage.SubStep != 1 && sj.Stage.SubStep != 2 {
			return fmt.Errorf("invalid employee sub-step %d", sj.Stage.SubStep)
		}
		stage = EmployeeProfile{SubStep: sj.Stage.SubStep}
	case "company":
		stage = CompanyProfile{}
	default:
		return fmt.Errorf("unknown wizard stage %q", sj.Stage.Kind)
	}

	role := sj.Role
	if role == "" {
		role = DefaultRole
	}

	*s = State{
		Stage:       stage,
		Role:        role,
		Credentials: sj.Credentials,
		Profile:     sj.Profile,
		Skills:      sj.Skills,
		File:        sj.File,
		Loading:     sj.Loading,
		IsError:     sj.IsError,
		Message:     sj.Message,
		FieldErrors: sj.FieldErrors,
	}
	return nil
}
