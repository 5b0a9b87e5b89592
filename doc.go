// Package espalier routes natural-language queries through a compiled
// agent graph: a supervisor picks between a quick question-answering path
// and a planned research path, both grounded in a bounded reasoning loop
// over pluggable tools.
//
// Basic usage:
//
//	assistant, err := espalier.New(
//		espalier.WithModel(llm.NewGemini(apiKey)),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := assistant.Ask(ctx, "What is the capital of France?")
//
// The Assistant keeps a session-scoped interaction log; recent entries feed
// back into routing and answering as conversation context.
package espalier
