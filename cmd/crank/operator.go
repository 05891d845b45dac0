package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spetersoncode/crank/task"
)

// consoleOperator answers blocking questions from stdin and prints
// notifications to the terminal.
type consoleOperator struct {
	reader *bufio.Reader
}

func newConsoleOperator() *consoleOperator {
	return &consoleOperator{reader: bufio.NewReader(os.Stdin)}
}

func (o *consoleOperator) Ask(_ context.Context, kind task.AskKind, payload string, _ bool) (task.AskResponse, error) {
	switch kind {
	case task.AskToolApproval:
		fmt.Printf("\n[approve?] %s\n", payload)
	case task.AskRequestFailed:
		fmt.Printf("\n[request failed] %s\n[retry?]\n", payload)
	case task.AskStreamInterrupted:
		fmt.Printf("\n[stream interrupted] %s\n[resume?]\n", payload)
	case task.AskMistakeLimit:
		fmt.Printf("\n[stuck] %s\n[continue?]\n", payload)
	case task.AskCompletion:
		fmt.Printf("\n[result]\n%s\n[accept?]\n", payload)
	default:
		fmt.Printf("\n[%s] %s\n", kind, payload)
	}

	fmt.Print("y = yes, n = no, or type feedback: ")
	answer, err := o.reader.ReadString('\n')
	if err != nil {
		return task.AskResponse{Decision: task.DecisionRejected}, err
	}
	answer = strings.TrimSpace(answer)

	switch strings.ToLower(answer) {
	case "y", "yes", "":
		return task.AskResponse{Decision: task.DecisionApproved}, nil
	case "n", "no":
		return task.AskResponse{Decision: task.DecisionRejected}, nil
	default:
		return task.AskResponse{Decision: task.DecisionMessage, Text: answer}, nil
	}
}

func (o *consoleOperator) Say(kind task.SayKind, payload string, partial bool) {
	switch kind {
	case task.SayText:
		if !partial {
			fmt.Printf("\n%s\n", payload)
		}
	case task.SayReasoning:
		// Reasoning streams continuously; keep it on one dim line.
		fmt.Print(".")
	case task.SayToolPreview:
		if !partial {
			fmt.Printf("[preparing %s]\n", payload)
		}
	case task.SayToolResult:
		fmt.Printf("[tool output]\n%s\n", payload)
	case task.SayError:
		fmt.Fprintf(os.Stderr, "[error] %s\n", payload)
	}
}
