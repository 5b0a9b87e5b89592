// Package prompts builds the model prompts for routing, the reasoning
// loop, research planning, and synthesis.
package prompts

import (
	"fmt"
	"strings"
)

const reactTemplate = `Answer the following question using the available tools when helpful.

Question: %[1]s

You have access to the following tools:
%[2]s
IMPORTANT: You must follow this EXACT format. Do not deviate!

Use the following format:
Thought: Consider what information or calculation is needed
Action: the action to take, should be one of [%[3]s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original question

Rules:
1. NEVER output both an Action and Final Answer in the same response
2. If you need to use a tool, output ONLY Thought, Action, and Action Input
3. Wait for the Observation before providing Final Answer
4. When you have the result, output ONLY Thought and Final Answer
%[4]s
Begin!

Question: %[1]s
Thought: %[5]s`

// React renders the reasoning-loop prompt. catalog is the tool listing,
// names the comma-joined tool names, contextBlock optional conversation
// context, and scratchpad the transcript of prior rounds.
func React(question, catalog, names, contextBlock, scratchpad string) string {
	extra := ""
	if contextBlock != "" {
		extra = "\nConversation context:\n" + contextBlock + "\n"
	}
	return fmt.Sprintf(reactTemplate, question, catalog, names, extra, scratchpad)
}

const routingTemplate = `You are a supervisor that routes user queries to the appropriate specialized agent.

Available agents:
1. "general" - For straightforward questions, calculations, simple web searches, and quick tasks
   - Has tools: Python REPL, Web Search
   - Best for: Math, simple facts, current events, quick lookups

2. "research" - For complex research requiring planning, multiple sources, and synthesis
   - Has tools: Wikipedia, ArXiv, Web Search, Python REPL
   - Best for: Academic research, in-depth analysis, multi-step investigations
%s
User Query: %s

Analyze the query and determine which agent is best suited to handle it.
Consider query complexity, the need for multiple sources, and whether
planning and iteration are required.

Respond with ONLY valid JSON matching this schema, no other text:
{"route": "general" | "research", "reasoning": "brief explanation"}`

// Routing renders the route-selection prompt. contextBlock carries recent
// conversation history and may be empty.
func Routing(query, contextBlock string) string {
	extra := ""
	if contextBlock != "" {
		extra = "\nRecent conversation:\n" + contextBlock + "\n"
	}
	return fmt.Sprintf(routingTemplate, extra, query)
}

const planningTemplate = `You are a research planning agent. Create a research plan for the given query.

Available tools:
%s
%sUser Query: %s

Create a step-by-step research plan that breaks the query into specific
research questions, picks a tool for each, and orders the steps.

IMPORTANT:
- For queries about research papers, ALWAYS use the arxiv tool
- For queries about datasets, ALWAYS use web_search
- Use multiple tools for comprehensive coverage
- Be specific in your search queries

Respond with ONLY valid JSON in this shape, no markdown fences:
{"plan": [{"step": 1, "action": "what to do", "tool": "tool_name", "query": "search query"}]}`

// Planning renders the research plan prompt. contextBlock carries recent
// conversation history and may be empty.
func Planning(query, contextBlock, catalog string) string {
	extra := ""
	if contextBlock != "" {
		extra = "\nRecent conversation:\n" + contextBlock + "\n"
	}
	return fmt.Sprintf(planningTemplate, catalog, extra, query)
}

const synthesisTemplate = `You are synthesizing research findings into a comprehensive response.

Original Query: %s
%s
Research Findings:
%s

Create a well-structured response that directly answers the query,
integrates information from all sources, highlights key insights, and
acknowledges any gaps in the research. Be thorough but clear.`

// Synthesis renders the final research synthesis prompt.
func Synthesis(query, contextBlock, findings string) string {
	extra := ""
	if contextBlock != "" {
		extra = "\nRecent conversation:\n" + contextBlock + "\n"
	}
	return fmt.Sprintf(synthesisTemplate, query, extra, findings)
}

const continueTemplate = `Based on the current research progress, determine if more investigation is needed.

Query: %s
Steps completed:
%s
Findings so far:
%s
Remaining plan: %d steps remaining

Decide whether to:
1. Continue with the remaining plan
2. Conclude the research and synthesize results

Consider if the findings adequately address the query.`

// Continue renders the iteration-check prompt used between research steps.
func Continue(query, completedSteps, findings string, remaining int) string {
	return fmt.Sprintf(continueTemplate, query, completedSteps, findings, remaining)
}

// JoinNames renders tool names as the comma-separated list the reasoning
// format references.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}
