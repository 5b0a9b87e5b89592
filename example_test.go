package espalier_test

import (
	"context"
	"fmt"
	"strings"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/llm"
)

// Example demonstrates wiring a custom model client. llm.Func adapts any
// function; production callers use llm.NewGemini instead.
func Example() {
	model := llm.Func(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "supervisor that routes user queries") {
			return `{"route": "general", "reasoning": "greeting"}`, nil
		}
		return "Final Answer: Hello!", nil
	})

	assistant, err := espalier.New(espalier.WithModel(model))
	if err != nil {
		fmt.Println(err)
		return
	}

	res, err := assistant.Ask(context.Background(), "Say hello")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Route, "-", res.Response)
	// Output: general - Hello!
}
