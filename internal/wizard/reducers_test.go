package wizard

import (
	"encoding/json"
	"testing"

	"github.com/constella-app/constella-web/internal/skills"
	"github.com/constella-app/constella-web/internal/ui/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validCredentials = Credentials{Name: "Ada Lovelace", Email: "ada@example.com", Password: "secret1"}

// atProfile returns a state that has passed step 1 with the given role
func atProfile(t *testing.T, role Role) State {
	t.Helper()
	s := Initial()
	s.Role = role
	s = SetCredentials(s, validCredentials)
	s = Next(s)
	require.Equal(t, 2, s.Step())
	return s
}

func TestInitial(t *testing.T) {
	s := Initial()

	assert.Equal(t, CredentialsStage{}, s.Stage)
	assert.Equal(t, 1, s.Step())
	assert.Equal(t, 0, s.SubStep())
	assert.Equal(t, RoleProjectManager, s.Role)
	assert.Zero(t, s.Credentials)
	assert.Zero(t, s.Skills.Len())
	assert.Nil(t, s.File)
	assert.Empty(t, s.Message)
}

func TestNext(t *testing.T) {
	t.Run("malformed emails stay at step 1", func(t *testing.T) {
		for _, email := range []string{"", "ada.example.com", "ada@example", "ada@example.c", "@"} {
			s := SetCredentials(Initial(), Credentials{Name: "Ada", Email: email, Password: "secret1"})
			s = Next(s)

			assert.Equal(t, 1, s.Step(), email)
			assert.True(t, s.FieldErrors.Has(FieldEmail), email)
			assert.True(t, s.IsError)
			assert.Equal(t, MsgFixErrors, s.Message)
		}
	})

	t.Run("short password", func(t *testing.T) {
		s := SetCredentials(Initial(), Credentials{Name: "Ada", Email: "ada@example.com", Password: "12345"})
		s = Next(s)

		assert.Equal(t, 1, s.Step())
		assert.Equal(t, "Must be at least 6 characters.", s.FieldErrors[FieldPassword])
	})

	t.Run("missing name", func(t *testing.T) {
		s := SetCredentials(Initial(), Credentials{Name: "", Email: "a@b.com", Password: "123456"})
		s = Next(s)

		assert.Equal(t, 1, s.Step())
		assert.Equal(t, FieldErrors{FieldName: "Full name is required."}, s.FieldErrors)
	})

	t.Run("project manager goes to the company profile", func(t *testing.T) {
		s := atProfile(t, RoleProjectManager)

		assert.Equal(t, CompanyProfile{}, s.Stage)
		assert.Empty(t, s.FieldErrors)
		assert.False(t, s.IsError)
		assert.Empty(t, s.Message)
	})

	t.Run("employee goes to sub-step 1", func(t *testing.T) {
		s := atProfile(t, RoleEmployee)
		assert.Equal(t, EmployeeProfile{SubStep: 1}, s.Stage)
		assert.Equal(t, 1, s.SubStep())
	})

	t.Run("no-op outside step 1", func(t *testing.T) {
		s := atProfile(t, RoleEmployee)
		assert.Equal(t, s.Stage, Next(s).Stage)
	})
}

func TestSetCredentials_ClearsChangedFieldErrors(t *testing.T) {
	s := Next(Initial())
	require.Len(t, s.FieldErrors, 3)

	s = SetCredentials(s, Credentials{Name: "Ada"})

	assert.False(t, s.FieldErrors.Has(FieldName))
	assert.True(t, s.FieldErrors.Has(FieldEmail))
	assert.True(t, s.FieldErrors.Has(FieldPassword))
	assert.False(t, s.IsError)
	assert.Empty(t, s.Message)
}

func TestReducersDoNotMutateInput(t *testing.T) {
	s := atProfile(t, RoleEmployee)
	s = AddSkill(s, skills.Hard, "go")
	s = Next(SetCredentials(Back(s), Credentials{})) // collect errors at step 1
	require.NotEmpty(t, s.FieldErrors)

	before, err := json.Marshal(s)
	require.NoError(t, err)

	_ = SetCredentials(s, validCredentials)
	_ = AddSkill(s, skills.Hard, "rust")
	_ = RemoveSkill(s, "go")
	_ = AttachFile(s, FileRef{Name: "cv.pdf"})
	_ = MergeKeywords(s, []string{"python"})
	_ = SubmitFailed(s, "boom")

	after, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSelectRole(t *testing.T) {
	t.Run("switches profile screens", func(t *testing.T) {
		s := atProfile(t, RoleProjectManager)

		s = SelectRole(s, RoleEmployee)
		assert.Equal(t, RoleEmployee, s.Role)
		assert.Equal(t, EmployeeProfile{SubStep: 1}, s.Stage)

		s = Continue(s)
		s = SelectRole(s, RoleProjectManager)
		assert.Equal(t, CompanyProfile{}, s.Stage)
		assert.Equal(t, 0, s.SubStep())
	})

	t.Run("same role keeps sub-step", func(t *testing.T) {
		s := Continue(atProfile(t, RoleEmployee))
		s = SelectRole(s, RoleEmployee)
		assert.Equal(t, EmployeeProfile{SubStep: 2}, s.Stage)
	})

	t.Run("clears hours error", func(t *testing.T) {
		s := Continue(atProfile(t, RoleEmployee))
		s, _, ok := PrepareSubmit(s)
		require.False(t, ok)
		require.True(t, s.FieldErrors.Has(FieldHours))

		s = SelectRole(s, RoleProjectManager)
		assert.False(t, s.FieldErrors.Has(FieldHours))
	})

	t.Run("ignored at step 1", func(t *testing.T) {
		s := SelectRole(Initial(), RoleEmployee)
		assert.Equal(t, RoleProjectManager, s.Role)
		assert.Equal(t, CredentialsStage{}, s.Stage)
	})
}

func TestNavigation(t *testing.T) {
	s := atProfile(t, RoleEmployee)

	s = Continue(s)
	assert.Equal(t, EmployeeProfile{SubStep: 2}, s.Stage)

	assert.Equal(t, EmployeeProfile{SubStep: 2}, Continue(s).Stage, "continue is a no-op on sub-step 2")

	s = Back(s)
	assert.Equal(t, EmployeeProfile{SubStep: 1}, s.Stage)

	s = Back(s)
	assert.Equal(t, CredentialsStage{}, s.Stage)
	assert.Equal(t, validCredentials, s.Credentials, "going back keeps the inputs")

	company := atProfile(t, RoleProjectManager)
	assert.Equal(t, CompanyProfile{}, Continue(company).Stage)
	assert.Equal(t, CredentialsStage{}, Back(company).Stage)
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name      string
		state     func(t *testing.T) State
		wantStage Stage
		wantReady bool
	}{
		{
			name:      "employee sub-step 1 skips to hours",
			state:     func(t *testing.T) State { return atProfile(t, RoleEmployee) },
			wantStage: EmployeeProfile{SubStep: 2},
			wantReady: false,
		},
		{
			name:      "employee sub-step 2 submits",
			state:     func(t *testing.T) State { return Continue(atProfile(t, RoleEmployee)) },
			wantStage: EmployeeProfile{SubStep: 2},
			wantReady: true,
		},
		{
			name:      "company submits",
			state:     func(t *testing.T) State { return atProfile(t, RoleProjectManager) },
			wantStage: CompanyProfile{},
			wantReady: true,
		},
		{
			name:      "ignored at step 1",
			state:     func(t *testing.T) State { return Initial() },
			wantStage: CredentialsStage{},
			wantReady: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ready := Skip(tt.state(t))
			assert.Equal(t, tt.wantStage, s.Stage)
			assert.Equal(t, tt.wantReady, ready)
		})
	}
}

func TestPrepareSubmit(t *testing.T) {
	t.Run("employee request", func(t *testing.T) {
		s := Continue(atProfile(t, RoleEmployee))
		s = AddSkill(s, skills.Hard, "go")
		s = AddSkill(s, skills.Soft, "teamwork")
		s = SetProfile(s, Profile{TotalHours: "40", AvailableHours: "20", Department: "ignored"})

		s, req, ok := PrepareSubmit(s)
		require.True(t, ok)
		assert.True(t, s.Loading)

		assert.Equal(t, &types.SignupRequest{
			Name:              "Ada Lovelace",
			Email:             "ada@example.com",
			Password:          "secret1",
			Role:              "employee",
			TotalHoursPerWeek: "40",
			AvailableHours:    "20",
			Skills:            []string{"go", "teamwork"},
		}, req)
	})

	t.Run("employee hours are checked", func(t *testing.T) {
		s := Continue(atProfile(t, RoleEmployee))
		s = SetProfile(s, Profile{TotalHours: "20", AvailableHours: "30"})

		s, req, ok := PrepareSubmit(s)
		assert.False(t, ok)
		assert.Nil(t, req)
		assert.False(t, s.Loading)
		assert.Equal(t, "Available hours cannot exceed total hours per week.", s.FieldErrors[FieldHours])
		assert.Equal(t, MsgFixErrors, s.Message)
		assert.Equal(t, EmployeeProfile{SubStep: 2}, s.Stage)
	})

	t.Run("skipping the skills screen still needs hours", func(t *testing.T) {
		s, ready := Skip(atProfile(t, RoleEmployee))
		require.False(t, ready)
		s, ready = Skip(s)
		require.True(t, ready)

		s, _, ok := PrepareSubmit(s)
		assert.False(t, ok)
		assert.Equal(t, "Please enter your weekly hours and availability.", s.FieldErrors[FieldHours])
	})

	t.Run("project manager ignores hours and sends department", func(t *testing.T) {
		s := atProfile(t, RoleProjectManager)
		s = SetProfile(s, Profile{TotalHours: "x", AvailableHours: "99", Department: " Product "})

		_, req, ok := PrepareSubmit(s)
		require.True(t, ok)
		assert.Equal(t, "project-manager", req.Role)
		assert.Equal(t, "Product", req.Department)
		assert.NotNil(t, req.Skills)
	})

	t.Run("invalid credentials go back to step 1", func(t *testing.T) {
		s := atProfile(t, RoleProjectManager)
		s.Credentials.Password = "123"

		s, req, ok := PrepareSubmit(s)
		assert.False(t, ok)
		assert.Nil(t, req)
		assert.Equal(t, CredentialsStage{}, s.Stage)
		assert.Equal(t, "Must be at least 6 characters.", s.FieldErrors[FieldPassword])
	})
}

func TestSubmitSucceeded_ResetsState(t *testing.T) {
	s := Continue(atProfile(t, RoleEmployee))
	s = AddSkill(s, skills.Hard, "go")
	s = AttachFile(s, FileRef{Name: "cv.pdf", Size: 2048})
	s = SetProfile(s, Profile{TotalHours: "40", AvailableHours: "20"})
	s, _, ok := PrepareSubmit(s)
	require.True(t, ok)

	got := SubmitSucceeded(s, "")

	want := Initial()
	want.Message = DefaultSuccessMessage
	assert.Equal(t, want, got)

	assert.Equal(t, "User created", SubmitSucceeded(s, "User created").Message)
}

func TestSubmitFailed_PreservesState(t *testing.T) {
	s := Continue(atProfile(t, RoleEmployee))
	s = SetProfile(s, Profile{TotalHours: "40", AvailableHours: "20"})
	s, _, ok := PrepareSubmit(s)
	require.True(t, ok)

	failed := SubmitFailed(s, "email: invalid")

	assert.False(t, failed.Loading)
	assert.True(t, failed.IsError)
	assert.Equal(t, "email: invalid", failed.Message)
	assert.Equal(t, s.Stage, failed.Stage)
	assert.Equal(t, s.Credentials, failed.Credentials)
	assert.Equal(t, s.Profile, failed.Profile)

	assert.Equal(t, DefaultFailureMessage, SubmitFailed(s, "").Message)
}

func TestSkills(t *testing.T) {
	s := atProfile(t, RoleEmployee)

	s = AddSkill(s, skills.Hard, "python")
	s = AddSkill(s, skills.Hard, "python")
	s = MergeKeywords(s, []string{"python", "docker"})
	s = MergeExtraction(s, types.SkillSummary{CoreHardSkills: []string{"python"}, CoreSoftSkills: []string{"Mentoring"}})
	s = MergeExtraction(s, types.SkillSummary{CoreHardSkills: []string{"python"}, CoreSoftSkills: []string{"Mentoring"}})

	assert.Equal(t, []string{"python", "docker"}, s.Skills.Hard)
	assert.Equal(t, []string{"Mentoring"}, s.Skills.Soft)

	s = RemoveSkill(s, "python")
	assert.Equal(t, []string{"docker"}, s.Skills.Hard)

	var extra skills.Set
	extra.Add(skills.Tools, "Git")
	s = MergeSkills(s, extra)
	s = MergeSkills(s, extra)
	assert.Equal(t, []string{"Git"}, s.Skills.Tools)
}

func TestFiles(t *testing.T) {
	s := AttachFile(Initial(), FileRef{Name: "a.pdf", Size: 1000})
	s = AttachFile(s, FileRef{Name: "b.txt", Size: 1536})

	require.NotNil(t, s.File)
	assert.Equal(t, "b.txt", s.File.Name)
	assert.EqualValues(t, 2, s.File.SizeKB())

	assert.Nil(t, DetachFile(s).File)
}

func TestStateJSON(t *testing.T) {
	s := Continue(atProfile(t, RoleEmployee))
	s = AddSkill(s, skills.Languages, "English")
	s = ShowMessage(s, false, "Skills extracted")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{"kind": "employee", "sub_step": float64(2)}, raw["stage"])

	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)

	company, err := json.Marshal(atProfile(t, RoleProjectManager))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(company, &decoded))
	assert.Equal(t, CompanyProfile{}, decoded.Stage)
}

func TestStateJSON_Invalid(t *testing.T) {
	tests := []string{
		`{"stage":{"kind":"employee","sub_step":3}}`,
		`{"stage":{"kind":"employee"}}`,
		`{"stage":{"kind":"admin"}}`,
	}
	for _, data := range tests {
		var s State
		assert.Error(t, json.Unmarshal([]byte(data), &s), data)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"employee", RoleEmployee, true},
		{"Project-Manager", RoleProjectManager, true},
		{"company", RoleProjectManager, true},
		{"admin", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
