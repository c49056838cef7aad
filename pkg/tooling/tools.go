// Package tooling exposes the knowledge lookups as chat-completion tools and
// dispatches the model's tool-call requests against them.
package tooling

import "github.com/openai/openai-go/v3"

// Tool names form a closed registry; dispatching an unrecognized name is a
// recoverable branch, not a crash.
const (
	NameMembers        = "getMembers"
	NameProcesses      = "getProcesses"
	NameTechStacks     = "getTechStacks"
	NameUserAssignment = "findUserAssignment"
)

var noParams = openai.FunctionParameters{
	"type":       "object",
	"properties": map[string]any{},
	"required":   []string{},
}

var MembersTool = openai.ChatCompletionToolUnionParam{
	OfFunction: &openai.ChatCompletionFunctionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name: NameMembers,
			Description: openai.String("Get team member information organized by projects. " +
				"Data structure: projects[] -> members[] with fields like name, role, email, department, team, manager, hire_date, skills, status, phone, location. " +
				"Use for: team questions, contact info, roles, project assignments, \"who works on X\", \"what's John's role\", \"team structure\"."),
			Parameters: noParams,
		},
	},
}

var ProcessesTool = openai.ChatCompletionToolUnionParam{
	OfFunction: &openai.ChatCompletionFunctionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name: NameProcesses,
			Description: openai.String("Get company processes and workflows organized by projects. " +
				"Data structure: projects[] -> processes[] with fields like process_name, description, status, dates, responsible_members, deliverables, dependencies, progress_percentage. " +
				"Use for: workflow questions, process status, timelines, responsibilities, \"how do we do X\", \"what's the status of Y\", \"who handles Z\"."),
			Parameters: noParams,
		},
	},
}

var TechStacksTool = openai.ChatCompletionToolUnionParam{
	OfFunction: &openai.ChatCompletionFunctionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name: NameTechStacks,
			Description: openai.String("Get technology stack information organized by projects. " +
				"Data structure: projects[] -> tech_stack{frontend, backend, database, ai_ml, cloud, tools} with fields like technology, version, purpose, status, documentation_url, support_team. " +
				"Use for: technology questions, tool info, versions, documentation, \"what tech do we use\", \"which database\", \"where to learn React\"."),
			Parameters: noParams,
		},
	},
}

var UserAssignmentTool = openai.ChatCompletionToolUnionParam{
	OfFunction: &openai.ChatCompletionFunctionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name: NameUserAssignment,
			Description: openai.String("Get the current user's project assignment(s) based on their name and optional department. " +
				"Data structure: user_found (boolean), total_projects (int), projects[] with fields like project_code, project_name, department, status, description, member_info. " +
				"Use for: finding user's project assignments, checking current projects, \"what project am I assigned to\", \"which team am I in\"."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"userName": map[string]string{
						"type":        "string",
						"description": "The name of the user to look up",
					},
					"userDepartment": map[string]string{
						"type":        "string",
						"description": "Optional department filter",
					},
				},
				"required": []string{"userName"},
			},
		},
	},
}

// Schemas returns the full tool schema set attached to the first completion
// call of every turn.
func Schemas() []openai.ChatCompletionToolUnionParam {
	return []openai.ChatCompletionToolUnionParam{
		MembersTool, ProcessesTool, TechStacksTool, UserAssignmentTool,
	}
}
