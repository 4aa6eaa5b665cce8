// File path: internal/flow/defaults.go
package flow

// DefaultFlows returns the built-in customer support and job interview
// flows used to seed an empty flow store.
func DefaultFlows() []*Flow {
	return []*Flow{customerSupportFlow(), jobInterviewFlow()}
}

func customerSupportFlow() *Flow {
	f := &Flow{
		FlowID:       "customer_support",
		Name:         "Customer Support Conversation",
		Description:  "A structured flow for handling customer support inquiries",
		InitialStage: "greeting",
	}
	f.AddStage(Stage{
		StageID:      "greeting",
		Name:         "Greeting",
		SystemPrompt: "You are a customer support agent. Begin by greeting the customer warmly and asking how you can help them today. Remember to be polite, professional, and empathetic. This is the first stage of the customer support conversation.",
		NextStages:   []string{"problem_identification"},
		MaxTurns:     2,
	})
	f.AddStage(Stage{
		StageID:      "problem_identification",
		Name:         "Problem Identification",
		SystemPrompt: "You are now in the problem identification stage. Ask specific questions to understand the customer's issue. Try to gather details about the problem such as when it started, what the customer was doing when it occurred, and any error messages they received. Your goal is to fully understand the problem before moving to solutions.",
		NextStages:   []string{"solution_proposal", "escalation"},
		CompletionCriteria: map[string]string{
			"problem_understanding": "The user has provided enough details about their problem",
			"severity_assessment":   "The severity/urgency of the problem is clear",
		},
		MaxTurns: 4,
	})
	f.AddStage(Stage{
		StageID:      "solution_proposal",
		Name:         "Solution Proposal",
		SystemPrompt: "You are now in the solution proposal stage. Based on the problem identified, suggest one or more solutions to the customer. Explain the solutions clearly and guide the customer through any steps they need to take. Confirm whether the solution worked for them.",
		NextStages:   []string{"resolution_confirmation", "escalation"},
		CompletionCriteria: map[string]string{
			"solution_provided":      "At least one solution has been suggested",
			"customer_understanding": "The customer understands the proposed solution",
		},
		MaxTurns: 5,
	})
	f.AddStage(Stage{
		StageID:      "resolution_confirmation",
		Name:         "Resolution Confirmation",
		SystemPrompt: "You are now in the resolution confirmation stage. Confirm with the customer that their issue has been resolved. Ask if there's anything else they need help with. If they're satisfied, thank them for contacting support.",
		NextStages:   []string{"closing", "problem_identification"},
		CompletionCriteria: map[string]string{
			"problem_resolved":       "The customer confirms their problem is resolved",
			"satisfaction_confirmed": "The customer expresses satisfaction with the solution",
		},
		MaxTurns: 3,
	})
	f.AddStage(Stage{
		StageID:      "escalation",
		Name:         "Escalation",
		SystemPrompt: "You are now in the escalation stage. The issue requires specialized assistance. Explain to the customer that you'll need to escalate their issue to a specialist. Collect any additional information needed for the escalation, and provide the customer with an estimate of when they can expect a response.",
		NextStages:   []string{"closing"},
		MaxTurns:     3,
	})
	f.AddStage(Stage{
		StageID:      "closing",
		Name:         "Closing",
		SystemPrompt: "You are now in the closing stage. Thank the customer for their time and patience. Provide any final instructions or information they might need. Let them know how they can get back in touch if they have further questions or issues in the future.",
		NextStages:   []string{},
		MaxTurns:     2,
	})
	return f
}

func jobInterviewFlow() *Flow {
	f := &Flow{
		FlowID:       "job_interview",
		Name:         "Job Interview Conversation",
		Description:  "A structured flow for conducting a job interview",
		InitialStage: "introduction",
	}
	f.AddStage(Stage{
		StageID:      "introduction",
		Name:         "Introduction",
		SystemPrompt: "You are an interviewer conducting a job interview. Begin by introducing yourself, explaining the interview process, and asking the candidate to briefly introduce themselves. Be professional but friendly. This is the first stage of the job interview.",
		NextStages:   []string{"background_experience"},
		MaxTurns:     2,
	})
	f.AddStage(Stage{
		StageID:      "background_experience",
		Name:         "Background & Experience",
		SystemPrompt: "You are now in the background and experience stage of the interview. Ask the candidate about their relevant work experience, skills, and educational background. Focus on experiences that are relevant to the position they're applying for. Ask follow-up questions to get detailed examples.",
		NextStages:   []string{"technical_questions"},
		CompletionCriteria: map[string]string{
			"experience_covered": "The candidate has discussed their relevant experience",
			"skills_covered":     "The candidate has mentioned their key skills",
		},
		MaxTurns: 4,
	})
	f.AddStage(Stage{
		StageID:      "technical_questions",
		Name:         "Technical Questions",
		SystemPrompt: "You are now in the technical questions stage of the interview. Ask the candidate specific technical questions related to the position. These should test their knowledge, problem-solving abilities, and technical skills. Give them time to think through complex questions and clarify if needed.",
		NextStages:   []string{"behavioral_questions"},
		CompletionCriteria: map[string]string{
			"technical_knowledge": "The candidate has demonstrated technical knowledge",
			"problem_solving":     "The candidate has shown problem-solving abilities",
		},
		MaxTurns: 5,
	})
	f.AddStage(Stage{
		StageID:      "behavioral_questions",
		Name:         "Behavioral Questions",
		SystemPrompt: "You are now in the behavioral questions stage of the interview. Ask the candidate about specific situations from their past experience that demonstrate key competencies like teamwork, leadership, conflict resolution, etc. Encourage them to use the STAR method (Situation, Task, Action, Result) in their responses.",
		NextStages:   []string{"candidate_questions"},
		CompletionCriteria: map[string]string{
			"behavioral_examples": "The candidate has provided specific examples of past behavior",
			"key_competencies":    "The candidate has demonstrated key competencies",
		},
		MaxTurns: 4,
	})
	f.AddStage(Stage{
		StageID:      "candidate_questions",
		Name:         "Candidate Questions",
		SystemPrompt: "You are now in the candidate questions stage of the interview. Ask the candidate if they have any questions about the position, company, team, or work environment. Answer their questions thoughtfully and honestly, providing additional context where appropriate.",
		NextStages:   []string{"closing_next_steps"},
		MaxTurns:     4,
	})
	f.AddStage(Stage{
		StageID:      "closing_next_steps",
		Name:         "Closing & Next Steps",
		SystemPrompt: "You are now in the closing stage of the interview. Thank the candidate for their time and interest in the position. Explain the next steps in the hiring process, including when they can expect to hear back. Ask if they have any final questions or concerns.",
		NextStages:   []string{},
		MaxTurns:     2,
	})
	return f
}
