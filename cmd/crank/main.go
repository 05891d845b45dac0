// Command crank runs an autonomous task from the terminal: the model streams
// a response, tool invocations are approved at the console, and the loop
// recurses until the finish tool is accepted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	crank "github.com/spetersoncode/crank"
	"github.com/spetersoncode/crank/approval"
	"github.com/spetersoncode/crank/contextwindow"
	"github.com/spetersoncode/crank/provider"
	"github.com/spetersoncode/crank/provider/anthropic"
	"github.com/spetersoncode/crank/provider/google"
	"github.com/spetersoncode/crank/provider/openai"
	"github.com/spetersoncode/crank/retry"
	"github.com/spetersoncode/crank/task"
	"github.com/spetersoncode/crank/tool"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: crank <task description>")
		os.Exit(1)
	}
	taskText := strings.Join(os.Args[1:], " ")

	ctx := context.Background()
	client, modelName, err := newClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	workspace, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	settings := approval.DefaultSettings()
	if path := os.Getenv("CRANK_APPROVALS"); path != "" {
		settings, err = approval.LoadSettings(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load approval settings: %v\n", err)
			os.Exit(1)
		}
	}
	gate, err := approval.NewGate(workspace, settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	registry := tool.NewRegistry()
	registerWorkspaceTools(registry, workspace)

	retry.Shared().SetMinInterval(time.Second)

	tk := task.New(client, tool.NewCoordinator(registry), nil,
		task.WithOperator(newConsoleOperator()),
		task.WithGate(gate),
		task.WithWindow(contextwindow.NewManager(modelName)),
		task.WithModel(modelName),
		task.WithSystemPrompt(systemPrompt(registry, workspace)),
		task.WithAutoResubmit(true),
		task.WithEnvironment(environmentDetails(workspace)),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "\ninterrupt received, finishing up")
		tk.State().Abort()
	}()

	result, err := tk.Run(ctx, crank.NewTextPart(taskText))
	if err != nil {
		fmt.Fprintf(os.Stderr, "task ended: %v\n", err)
	}
	if result != nil {
		fmt.Printf("\n--- %s after %d turn(s), %d tokens, $%.4f ---\n",
			result.Phase, result.Turns, result.Metrics.Usage.Total(), result.Metrics.Cost)
		if result.Completed {
			fmt.Println(result.Output)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// newClient picks a provider from whichever API key is set.
func newClient(ctx context.Context) (provider.Client, string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return anthropic.New(key), anthropic.DefaultModel, nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openai.New(key), openai.DefaultModel, nil
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c, err := google.New(ctx, key)
		if err != nil {
			return nil, "", err
		}
		return c, google.DefaultModel, nil
	}
	return nil, "", fmt.Errorf("no API key found: set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GOOGLE_API_KEY")
}

func environmentDetails(workspace string) task.EnvironmentFunc {
	return func(context.Context) string {
		return fmt.Sprintf("<environment_details>\nWorking directory: %s\nCurrent time: %s\n</environment_details>",
			workspace, time.Now().Format(time.RFC1123))
	}
}
