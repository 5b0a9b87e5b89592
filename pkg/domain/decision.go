package domain

// DecisionKind tags the outcome of parsing one block of model output.
type DecisionKind string

const (
	// DecisionReasoning means the block contained only a thought.
	DecisionReasoning DecisionKind = "reasoning"
	// DecisionAction means the block requested a tool invocation.
	DecisionAction DecisionKind = "action"
	// DecisionFinalAnswer means the block terminated the loop with an answer.
	DecisionFinalAnswer DecisionKind = "final_answer"
	// DecisionMalformed means no recognized structure was found. This is
	// data, not an error: the loop folds it back and lets the model retry.
	DecisionMalformed DecisionKind = "malformed"
)

// Decision is the structured form of one free-form model output block.
// It is produced fresh each round and consumed immediately by the loop.
type Decision struct {
	Kind DecisionKind

	// Thought is the first Thought content in the block, if any.
	Thought string

	// Tool and Input are set when Kind is DecisionAction. Tool is normalized
	// (lower-case, internal whitespace collapsed to underscores).
	Tool  string
	Input string

	// Answer is set when Kind is DecisionFinalAnswer.
	Answer string

	// Raw preserves the original block for Malformed decisions.
	Raw string
}
