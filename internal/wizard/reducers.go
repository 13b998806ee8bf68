package wizard

import (
	"strings"

	"github.com/constella-app/constella-web/internal/skills"
	"github.com/constella-app/constella-web/internal/ui/types"
)

const (
	DefaultSuccessMessage = "Account created successfully."
	DefaultFailureMessage = "Something went wrong."
)

// every reducer works on a copy: callers can keep using the state they passed in

func withBanner(s State, isError bool, msg string) State {
	s.IsError = isError
	s.Message = msg
	return s
}

func clearBanner(s State) State {
	s.IsError = false
	s.Message = ""
	return s
}

// SetCredentials records the step 1 inputs. The banner and the errors of changed fields are cleared.
func SetCredentials(s State, c Credentials) State {
	s = s.clone()
	if c.Name != s.Credentials.Name {
		delete(s.FieldErrors, FieldName)
	}
	if c.Email != s.Credentials.Email {
		delete(s.FieldErrors, FieldEmail)
	}
	if c.Password != s.Credentials.Password {
		delete(s.FieldErrors, FieldPassword)
	}
	s.Credentials = c
	return clearBanner(s)
}

// SetProfile records the step 2 inputs. The banner and, if the hours changed, the hours error are cleared.
func SetProfile(s State, p Profile) State {
	s = s.clone()
	if p.TotalHours != s.Profile.TotalHours || p.AvailableHours != s.Profile.AvailableHours {
		delete(s.FieldErrors, FieldHours)
	}
	s.Profile = p
	return clearBanner(s)
}

// Next validates the credentials and moves to the profile screen for the current role
func Next(s State) State {
	s = s.clone()
	if _, ok := s.Stage.(CredentialsStage); !ok {
		return s
	}

	if errs := ValidateCredentials(s.Credentials); len(errs) > 0 {
		s.FieldErrors = errs
		return withBanner(s, true, MsgFixErrors)
	}

	s.FieldErrors = nil
	s.Stage = profileStage(s.Role)
	return clearBanner(s)
}

// SelectRole switches the profile screen. Ignored outside step 2.
func SelectRole(s State, role Role) State {
	s = s.clone()
	if s.Step() != 2 {
		return s
	}

	if role != s.Role {
		s.Role = role
		s.Stage = profileStage(role)
	}
	delete(s.FieldErrors, FieldHours)
	return s
}

// Continue moves an employee from the skills screen to the hours screen
func Continue(s State) State {
	s = s.clone()
	if e, ok := s.Stage.(EmployeeProfile); ok && e.SubStep == 1 {
		s.Stage = EmployeeProfile{SubStep: 2}
	}
	return s
}

// Back retreats one employee sub-step, otherwise returns to step 1
func Back(s State) State {
	s = s.clone()
	if e, ok := s.Stage.(EmployeeProfile); ok && e.SubStep > 1 {
		s.Stage = EmployeeProfile{SubStep: e.SubStep - 1}
		return s
	}
	s.Stage = CredentialsStage{}
	return s
}

// Skip jumps over the employee skills screen. Anywhere else in step 2 it asks for submission (ready is true).
func Skip(s State) (next State, ready bool) {
	s = s.clone()
	switch st := s.Stage.(type) {
	case EmployeeProfile:
		if st.SubStep == 1 {
			s.Stage = EmployeeProfile{SubStep: 2}
			return s, false
		}
		return s, true
	case CompanyProfile:
		return s, true
	default:
		return s, false
	}
}

// PrepareSubmit validates everything collected so far and builds the signup request.
//
// When validation fails the returned state carries the field errors and banner and ok is false.
// Invalid credentials send the user back to step 1 where those fields are shown.
// Hours are only checked for employees and the department is only sent for project managers.
func PrepareSubmit(s State) (next State, req *types.SignupRequest, ok bool) {
	s = s.clone()

	errs := ValidateCredentials(s.Credentials)
	if s.Role == RoleEmployee {
		for field, msg := range ValidateHours(s.Profile.TotalHours, s.Profile.AvailableHours) {
			if errs == nil {
				errs = FieldErrors{}
			}
			errs[field] = msg
		}
	}

	if len(errs) > 0 {
		s.FieldErrors = errs
		if errs.Has(FieldName) || errs.Has(FieldEmail) || errs.Has(FieldPassword) {
			s.Stage = CredentialsStage{}
		} else if s.Role == RoleEmployee {
			s.Stage = EmployeeProfile{SubStep: 2}
		}
		s.Loading = false
		return withBanner(s, true, MsgFixErrors), nil, false
	}

	req = &types.SignupRequest{
		Name:              strings.TrimSpace(s.Credentials.Name),
		Email:             strings.TrimSpace(s.Credentials.Email),
		Password:          s.Credentials.Password,
		Role:              string(s.Role),
		TotalHoursPerWeek: strings.TrimSpace(s.Profile.TotalHours),
		AvailableHours:    strings.TrimSpace(s.Profile.AvailableHours),
		Skills:            s.Skills.All(),
	}
	if s.Role == RoleProjectManager {
		req.Department = strings.TrimSpace(s.Profile.Department)
	}

	s.FieldErrors = nil
	s.Loading = true
	return clearBanner(s), req, true
}

// SubmitSucceeded resets the wizard and shows the server message
func SubmitSucceeded(_ State, message string) State {
	if strings.TrimSpace(message) == "" {
		message = DefaultSuccessMessage
	}
	return withBanner(Initial(), false, message)
}

// SubmitFailed keeps everything the user entered so they can correct it and retry
func SubmitFailed(s State, message string) State {
	s = s.clone()
	s.Loading = false
	if strings.TrimSpace(message) == "" {
		message = DefaultFailureMessage
	}
	return withBanner(s, true, message)
}

// ShowMessage sets the banner without changing anything else
func ShowMessage(s State, isError bool, message string) State {
	return withBanner(s.clone(), isError, message)
}

func AddSkill(s State, category skills.Category, skill string) State {
	s = s.clone()
	s.Skills.Add(category, skill)
	return s
}

func RemoveSkill(s State, skill string) State {
	s = s.clone()
	s.Skills.Remove(skill)
	return s
}

// AttachFile records the selected CV. The most recent file wins.
func AttachFile(s State, f FileRef) State {
	s = s.clone()
	s.File = &f
	return s
}

func DetachFile(s State) State {
	s = s.clone()
	s.File = nil
	return s
}

// MergeExtraction unions the categorised skills returned by the CV extractor
func MergeExtraction(s State, summary types.SkillSummary) State {
	s = s.clone()
	s.Skills.MergeSummary(summary)
	return s
}

// MergeKeywords unions dictionary keywords found in a document into the hard skills
func MergeKeywords(s State, keywords []string) State {
	s = s.clone()
	for _, k := range keywords {
		s.Skills.Add(skills.Hard, k)
	}
	return s
}

// MergeSkills unions a whole skill set
func MergeSkills(s State, other skills.Set) State {
	s = s.clone()
	s.Skills.Union(other)
	return s
}
