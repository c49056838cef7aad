// Package knowledge reads the static JSON knowledge collections (members,
// processes, tech stacks) and answers name-based project-assignment lookups.
//
// Every operation reads the file fresh from disk and converts every failure
// into a structured JSON payload instead of returning an error. The results
// are consumed autonomously by the language model, which must always receive
// something coherent to relay to the end user.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const hrContact = "Please check with HR or your manager for the latest information."

// Store resolves knowledge lookups against the JSON files in one data
// directory. It holds no cached state and is safe for concurrent use.
type Store struct {
	memberPath    string
	processPath   string
	techStackPath string
	log           *zap.Logger
}

// NewStore builds a Store over the given collection files.
func NewStore(memberPath, processPath, techStackPath string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		memberPath:    memberPath,
		processPath:   processPath,
		techStackPath: techStackPath,
		log:           log,
	}
}

// Members returns the member collection as indented JSON, or an error
// payload describing what went wrong.
func (s *Store) Members() string {
	return s.loadCollection(s.memberPath, "member information")
}

// Processes returns the process collection as indented JSON, or an error
// payload.
func (s *Store) Processes() string {
	return s.loadCollection(s.processPath, "process information")
}

// TechStacks returns the tech stack collection as indented JSON, or an
// error payload.
func (s *Store) TechStacks() string {
	return s.loadCollection(s.techStackPath, "tech stack information")
}

// loadCollection reads and re-encodes one collection file. The three failure
// kinds (missing file, permission, malformed JSON) each produce a distinct
// message so the model can relay useful guidance.
func (s *Store) loadCollection(path, label string) string {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.log.Error("knowledge file not found", zap.String("path", path))
		return errorPayload(
			fmt.Sprintf("%s file not found at: %s", label, path),
			fmt.Sprintf("The %s is currently unavailable.", label),
		)
	case os.IsPermission(err):
		s.log.Error("knowledge file not readable", zap.String("path", path))
		return errorPayload(
			fmt.Sprintf("permission denied reading %s file at: %s", label, path),
			fmt.Sprintf("The %s could not be accessed.", label),
		)
	case err != nil:
		s.log.Error("knowledge file read failed", zap.String("path", path), zap.Error(err))
		return errorPayload(
			fmt.Sprintf("unexpected error loading %s: %v", label, err),
			fmt.Sprintf("The %s could not be loaded.", label),
		)
	}

	var collection any
	if err := json.Unmarshal(data, &collection); err != nil {
		s.log.Error("knowledge file malformed", zap.String("path", path), zap.Error(err))
		return errorPayload(
			fmt.Sprintf("error decoding JSON from %s file: %v", label, err),
			fmt.Sprintf("The %s appears to be corrupted.", label),
		)
	}

	out, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return errorPayload(
			fmt.Sprintf("error re-encoding %s: %v", label, err),
			fmt.Sprintf("The %s could not be prepared.", label),
		)
	}

	s.log.Info("knowledge collection loaded", zap.String("path", path))
	return string(out)
}

// errorPayload renders a failure as a JSON object the model can inspect.
// Callers branch on the presence of the "error" key, never on exceptions.
func errorPayload(errMsg, human string) string {
	out, err := json.MarshalIndent(map[string]string{
		"error":   errMsg,
		"message": human,
		"contact": hrContact,
	}, "", "  ")
	if err != nil {
		return `{"error": "internal encoding failure", "contact": "` + hrContact + `"}`
	}
	return string(out)
}

// member mirrors one entry of a project's members array in the member file.
type member struct {
	EmployeeID string   `json:"employee_id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Email      string   `json:"email"`
	Department string   `json:"department"`
	Team       string   `json:"team"`
	Manager    string   `json:"manager"`
	HireDate   string   `json:"hire_date"`
	Location   string   `json:"location,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Status     string   `json:"status"`
}

// project mirrors one entry of the member collection.
type project struct {
	ProjectCode string   `json:"project_code"`
	ProjectName string   `json:"project_name"`
	Department  string   `json:"department"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Members     []member `json:"members"`
}

// memberInfo is the nested sub-object carried by each assignment entry.
type memberInfo struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	Team       string `json:"team"`
	Manager    string `json:"manager"`
	HireDate   string `json:"hire_date"`
	Status     string `json:"status"`
}

// assignment is one matched project in a FindUserAssignment result.
type assignment struct {
	ProjectCode string     `json:"project_code"`
	ProjectName string     `json:"project_name"`
	Department  string     `json:"department"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	MemberInfo  memberInfo `json:"member_info"`
}

// FindUserAssignment searches the member collection for projects that the
// named person belongs to. Matching is case-insensitive; department, when
// non-empty, further filters by substring against the member's department.
func (s *Store) FindUserAssignment(name, department string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return marshalResult(map[string]any{
			"user_found": false,
			"message":    "Please provide a name to search for.",
			"suggestions": []string{
				"Tell me your full name as it appears in company records.",
				"Optionally include your department to narrow down the search.",
			},
		})
	}

	data, err := os.ReadFile(s.memberPath)
	if err != nil {
		s.log.Error("assignment lookup read failed", zap.String("path", s.memberPath), zap.Error(err))
		return marshalResult(map[string]any{
			"user_found": false,
			"error":      fmt.Sprintf("error looking up user project assignment: %v", err),
		})
	}

	var projects []project
	if err := json.Unmarshal(data, &projects); err != nil {
		s.log.Error("assignment lookup decode failed", zap.String("path", s.memberPath), zap.Error(err))
		return marshalResult(map[string]any{
			"user_found": false,
			"error":      fmt.Sprintf("error looking up user project assignment: %v", err),
		})
	}

	var found []assignment
	for _, p := range projects {
		for _, m := range p.Members {
			if !matchesName(m.Name, name) {
				continue
			}
			if department != "" && m.Department != "" &&
				!strings.Contains(strings.ToLower(m.Department), strings.ToLower(department)) {
				continue
			}
			found = append(found, assignment{
				ProjectCode: p.ProjectCode,
				ProjectName: p.ProjectName,
				Department:  p.Department,
				Status:      p.Status,
				Description: p.Description,
				MemberInfo: memberInfo{
					EmployeeID: m.EmployeeID,
					Name:       m.Name,
					Role:       m.Role,
					Email:      m.Email,
					Team:       m.Team,
					Manager:    m.Manager,
					HireDate:   m.HireDate,
					Status:     m.Status,
				},
			})
		}
	}

	s.log.Info("assignment lookup finished",
		zap.String("name", name),
		zap.Int("projects", len(found)))

	if len(found) == 0 {
		message := fmt.Sprintf("No project assignment found for user: %s", name)
		if department != "" {
			message += fmt.Sprintf(" in department: %s", department)
		}
		return marshalResult(map[string]any{
			"user_found": false,
			"message":    message,
			"suggestions": []string{
				"Check the spelling of the name against company records.",
				"Try searching without a department filter.",
				"Ask HR or your manager for project assignment details.",
			},
		})
	}

	return marshalResult(map[string]any{
		"user_found":     true,
		"total_projects": len(found),
		"projects":       found,
	})
}

// matchesName reports whether a stored member name matches a search query.
// A match is a full substring, a prefix, or a hit on any individual token of
// the stored name (a first or last name alone matches).
//
// The token heuristic can produce false positives for organizations with
// duplicate names; it lives here, in one place, so the policy can be
// tightened without touching callers.
func matchesName(stored, query string) bool {
	stored = strings.ToLower(strings.TrimSpace(stored))
	query = strings.ToLower(strings.TrimSpace(query))
	if stored == "" || query == "" {
		return false
	}
	if strings.Contains(stored, query) {
		return true
	}
	if strings.HasPrefix(stored, query) {
		return true
	}
	for _, token := range strings.Fields(stored) {
		if strings.Contains(token, query) {
			return true
		}
	}
	return false
}

func marshalResult(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"user_found": false, "error": "internal encoding failure"}`
	}
	return string(out)
}
