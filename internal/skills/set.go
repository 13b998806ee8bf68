// Package skills holds the categorised skill set collected by the signup wizard, the keyword dictionary used to
// scan uploaded documents and the extraction step that combines the remote CV extractor with the local scan.
package skills

import (
	"slices"
	"strings"

	"github.com/constella-app/constella-web/internal/ui/types"
)

type Category string

const (
	Hard      Category = "hard"
	Soft      Category = "soft"
	Tools     Category = "tools"
	Languages Category = "languages"
)

// Categories lists the categories in display order
var Categories = []Category{Hard, Soft, Tools, Languages}

// ParseCategory returns the category named by s (case-insensitive)
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Categories, c) {
		return c, true
	}
	return "", false
}

func (c Category) Label() string {
	switch c {
	case Hard:
		return "Hard skills"
	case Soft:
		return "Soft skills"
	case Tools:
		return "Tools & tech"
	case Languages:
		return "Languages"
	default:
		return string(c)
	}
}

// Set is a set of skills per category.
// Skills are trimmed, matched exactly (case-sensitive) and kept in insertion order.
// The zero value is an empty set.
type Set struct {
	Hard      []string `json:"hard,omitempty"`
	Soft      []string `json:"soft,omitempty"`
	Tools     []string `json:"tools,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

func (s *Set) list(c Category) *[]string {
	switch c {
	case Hard:
		return &s.Hard
	case Soft:
		return &s.Soft
	case Tools:
		return &s.Tools
	case Languages:
		return &s.Languages
	default:
		return nil
	}
}

// Add inserts skill into category and reports whether the set changed
func (s *Set) Add(category Category, skill string) bool {
	l := s.list(category)
	skill = strings.TrimSpace(skill)
	if l == nil || skill == "" || slices.Contains(*l, skill) {
		return false
	}
	*l = append(*l, skill)
	return true
}

// Remove deletes skill from every category
func (s *Set) Remove(skill string) {
	skill = strings.TrimSpace(skill)
	for _, c := range Categories {
		l := s.list(c)
		*l = slices.DeleteFunc(*l, func(v string) bool { return v == skill })
	}
}

// Union adds every skill of other to s, category by category
func (s *Set) Union(other Set) {
	for _, c := range Categories {
		for _, skill := range other.Get(c) {
			s.Add(c, skill)
		}
	}
}

// MergeSummary unions the categorised lists returned by the CV extractor
func (s *Set) MergeSummary(summary types.SkillSummary) {
	for _, skill := range summary.CoreHardSkills {
		s.Add(Hard, skill)
	}
	for _, skill := range summary.CoreToolsAndTech {
		s.Add(Tools, skill)
	}
	for _, skill := range summary.CoreSoftSkills {
		s.Add(Soft, skill)
	}
	for _, skill := range summary.CoreLanguages {
		s.Add(Languages, skill)
	}
}

// Get returns the skills in category
func (s Set) Get(c Category) []string {
	l := s.list(c)
	if l == nil {
		return nil
	}
	return *l
}

func (s Set) Contains(c Category, skill string) bool {
	return slices.Contains(s.Get(c), strings.TrimSpace(skill))
}

// All flattens the set, dropping skills already seen in an earlier category
func (s Set) All() []string {
	all := make([]string, 0, s.Len())
	for _, c := range Categories {
		for _, skill := range s.Get(c) {
			if !slices.Contains(all, skill) {
				all = append(all, skill)
			}
		}
	}
	return all
}

// Len counts entries across categories
func (s Set) Len() int {
	return len(s.Hard) + len(s.Soft) + len(s.Tools) + len(s.Languages)
}

func (s Set) Clone() Set {
	return Set{
		Hard:      slices.Clone(s.Hard),
		Soft:      slices.Clone(s.Soft),
		Tools:     slices.Clone(s.Tools),
		Languages: slices.Clone(s.Languages),
	}
}
